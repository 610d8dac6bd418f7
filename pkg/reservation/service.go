// Package reservation is the typed client for the reservation CRUD
// endpoints.
package reservation

import (
	"context"
	"net/url"
	"strconv"

	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/transport"
)

const basePath = "/api/v1/reservations"

// Filters narrows List results. Zero values are omitted from the query.
type Filters struct {
	Page        int
	PageSize    int
	OrganizerID string
}

// Payload carries the writable reservation fields for Create.
type Payload struct {
	Title          string                          `json:"title"`
	Description    string                          `json:"description"`
	StartAt        string                          `json:"startAt"`
	EndAt          string                          `json:"endAt"`
	Timezone       string                          `json:"timezone"`
	RRule          string                          `json:"rrule,omitempty"`
	IsPrivate      bool                            `json:"isPrivate,omitempty"`
	ApprovalStatus model.ReservationApprovalStatus `json:"approvalStatus,omitempty"`
	ResourceIDs    []string                        `json:"resourceIds,omitempty"`
	ParticipantIDs []string                        `json:"participantIds,omitempty"`
}

// Update carries a partial change set for Update; nil fields are left
// untouched by the server.
type Update struct {
	Title          *string                          `json:"title,omitempty"`
	Description    *string                          `json:"description,omitempty"`
	StartAt        *string                          `json:"startAt,omitempty"`
	EndAt          *string                          `json:"endAt,omitempty"`
	Timezone       *string                          `json:"timezone,omitempty"`
	RRule          *string                          `json:"rrule,omitempty"`
	IsPrivate      *bool                            `json:"isPrivate,omitempty"`
	ApprovalStatus *model.ReservationApprovalStatus `json:"approvalStatus,omitempty"`
	ResourceIDs    []string                         `json:"resourceIds,omitempty"`
	ParticipantIDs []string                         `json:"participantIds,omitempty"`
}

// Service issues reservation requests through the shared transport.
type Service struct {
	client *transport.Client
}

// NewService builds a Service over client.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// List fetches reservations matching filters plus the pagination meta.
func (s *Service) List(ctx context.Context, filters Filters) ([]model.Reservation, *transport.Pagination, error) {
	params := url.Values{}
	if filters.Page > 0 {
		params.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(filters.PageSize))
	}
	if filters.OrganizerID != "" {
		params.Set("organizerId", filters.OrganizerID)
	}
	path := basePath
	if query := params.Encode(); query != "" {
		path += "?" + query
	}
	resp, err := transport.Get[[]model.Reservation](ctx, s.client, path)
	if err != nil {
		return nil, nil, err
	}
	return resp.Data, resp.Meta, nil
}

// Create registers a new reservation and returns the server's copy.
func (s *Service) Create(ctx context.Context, payload Payload) (*model.Reservation, error) {
	resp, err := transport.Post[model.Reservation](ctx, s.client, basePath, payload)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Update applies a partial change set to an existing reservation.
func (s *Service) Update(ctx context.Context, id string, change Update) (*model.Reservation, error) {
	resp, err := transport.Patch[model.Reservation](ctx, s.client, basePath+"/"+url.PathEscape(id), change)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Delete removes a reservation.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := transport.Delete[any](ctx, s.client, basePath+"/"+url.PathEscape(id))
	return err
}
