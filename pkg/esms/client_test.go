package esms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/esms-io/esms-go/pkg/auth"
	"github.com/esms-io/esms-go/pkg/config"
	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/reservation"
	"github.com/esms-io/esms-go/pkg/store"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.LogLevel = "disabled"
	return cfg
}

func TestNewWiresMemoryStoreByDefault(t *testing.T) {
	c, err := New(context.Background(), testConfig("http://esms.invalid"))
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close(context.Background())) }()

	_, ok := c.Store.(*store.MemoryStore)
	require.True(t, ok)
	require.NotNil(t, c.Auth)
	require.NotNil(t, c.Reservations)
	require.NotNil(t, c.Resources)
}

func TestNewWiresFileStoreWhenStoreDirSet(t *testing.T) {
	cfg := testConfig("http://esms.invalid")
	cfg.StoreDir = t.TempDir()

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := c.Store.(*store.FileStore)
	require.True(t, ok)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("http://esms.invalid")
	cfg.Timeout = 0
	_, err := New(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig("http://esms.invalid")
	cfg.LogLevel = "chatty"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestTransportPicksUpRotatedToken(t *testing.T) {
	var lastAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/v1/reservations" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"available":true}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	_, _, err = c.Reservations.List(context.Background(), reservation.Filters{})
	require.NoError(t, err)
	require.Empty(t, lastAuth, "no session yet, no bearer header")

	require.NoError(t, c.Auth.SaveSession(&auth.Session{
		AccessToken: "fresh-token",
		User:        model.User{ID: "u-1", Role: model.RoleGeneral},
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
	}))

	available, err := c.Resources.CheckAvailability(context.Background(), "res-1", "a", "b")
	require.NoError(t, err)
	require.True(t, available)
	require.Equal(t, "Bearer fresh-token", lastAuth)
}

func TestLoginThroughComposedGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": auth.Session{
			AccessToken: "tok",
			User:        model.User{ID: "u-9", Role: model.RoleSecretary, IsActive: true},
			ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
		}})
	}))
	defer srv.Close()

	c, err := New(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	b := c.NewBinding(nil)
	stop, err := b.Start()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, b.Login(context.Background(), auth.Credentials{Username: "aoki", Password: "pw"}))
	state := b.Snapshot()
	require.True(t, state.IsAuthenticated)
	require.True(t, b.HasRole(model.RoleSecretary))
}
