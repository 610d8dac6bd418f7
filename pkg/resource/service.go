// Package resource is the typed client for resource search and
// availability checks.
package resource

import (
	"context"
	"net/url"
	"strconv"

	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/transport"
)

const basePath = "/api/v1/resources"

// Filters narrows Search results. Zero values are omitted.
type Filters struct {
	Keyword      string
	Type         model.ResourceType
	RequiredRole model.Role
	Capacity     int
}

// Service issues resource requests through the shared transport.
type Service struct {
	client *transport.Client
}

// NewService builds a Service over client.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Search fetches resources matching filters plus the pagination meta.
func (s *Service) Search(ctx context.Context, filters Filters) ([]model.Resource, *transport.Pagination, error) {
	params := url.Values{}
	if filters.Keyword != "" {
		params.Set("keyword", filters.Keyword)
	}
	if filters.Type != "" {
		params.Set("type", string(filters.Type))
	}
	if filters.RequiredRole != "" {
		params.Set("requiredRole", string(filters.RequiredRole))
	}
	if filters.Capacity > 0 {
		params.Set("capacity", strconv.Itoa(filters.Capacity))
	}
	path := basePath
	if query := params.Encode(); query != "" {
		path += "?" + query
	}
	resp, err := transport.Get[[]model.Resource](ctx, s.client, path)
	if err != nil {
		return nil, nil, err
	}
	return resp.Data, resp.Meta, nil
}

type availability struct {
	Available bool `json:"available"`
}

// CheckAvailability reports whether the resource is free in [startAt, endAt).
func (s *Service) CheckAvailability(ctx context.Context, id, startAt, endAt string) (bool, error) {
	params := url.Values{}
	params.Set("startAt", startAt)
	params.Set("endAt", endAt)
	path := basePath + "/" + url.PathEscape(id) + "/availability?" + params.Encode()
	resp, err := transport.Get[availability](ctx, s.client, path)
	if err != nil {
		return false, err
	}
	return resp.Data.Available, nil
}
