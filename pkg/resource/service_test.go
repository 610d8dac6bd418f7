package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/transport"
)

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(transport.New(transport.Options{BaseURL: srv.URL}))
}

func TestSearchBuildsQuery(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/resources", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "projector", q.Get("keyword"))
		require.Equal(t, "MEETING_ROOM", q.Get("type"))
		require.Equal(t, "MANAGER", q.Get("requiredRole"))
		require.Equal(t, "8", q.Get("capacity"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []model.Resource{{ID: "res-1", Name: "Room A", Type: model.ResourceMeetingRoom}},
			"meta": transport.Pagination{Page: 1, PageSize: 20, TotalItems: 1, TotalPages: 1},
		})
	}))

	list, meta, err := svc.Search(context.Background(), Filters{
		Keyword:      "projector",
		Type:         model.ResourceMeetingRoom,
		RequiredRole: model.RoleManager,
		Capacity:     8,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Room A", list[0].Name)
	require.Equal(t, 1, meta.TotalItems)
}

func TestCheckAvailability(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/resources/res-1/availability", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "2026-09-01T10:00:00Z", q.Get("startAt"))
		require.Equal(t, "2026-09-01T12:00:00Z", q.Get("endAt"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"available":true}}`))
	}))

	available, err := svc.CheckAvailability(context.Background(), "res-1", "2026-09-01T10:00:00Z", "2026-09-01T12:00:00Z")
	require.NoError(t, err)
	require.True(t, available)
}

func TestCheckAvailabilityPropagatesError(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":404,"message":"resource not found"}}`))
	}))

	_, err := svc.CheckAvailability(context.Background(), "missing", "a", "b")
	te, ok := transport.AsError(err)
	require.True(t, ok)
	require.Equal(t, 404, te.Status)
}
