package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Resolve(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/oauth/user", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)

		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(HubUser{
				ID:      42,
				User:    "alice",
				Avatar:  "a.png",
				Premium: 1,
				Balance: 1500,
			})
		case "Bearer broken-token":
			w.WriteHeader(http.StatusInternalServerError)
		case "Bearer garbage-body":
			w.Write([]byte("not json"))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api")
	ctx := context.Background()

	t.Run("valid_token", func(t *testing.T) {
		user, err := client.Resolve(ctx, "good-token")
		require.NoError(t, err)
		require.Equal(t, int64(42), user.ID)
		require.Equal(t, "alice", user.User)
		require.Equal(t, 1, user.Premium)
		require.Equal(t, 1500.0, user.Balance)
	})

	t.Run("rejected_token", func(t *testing.T) {
		_, err := client.Resolve(ctx, "bad-token")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("hub_failure", func(t *testing.T) {
		_, err := client.Resolve(ctx, "broken-token")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("malformed_body", func(t *testing.T) {
		_, err := client.Resolve(ctx, "garbage-body")
		require.Error(t, err)
	})
}

func TestClient_Resolve_HubDown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL + "/api")
	_, err := client.Resolve(context.Background(), "any")
	require.Error(t, err)
}

func TestHubUser_ToUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		hub          HubUser
		wantUsername string
		wantAdmin    bool
	}{
		{
			name:         "username_field_wins",
			hub:          HubUser{ID: 1, User: "alice", Name: "Alice Liddell"},
			wantUsername: "alice",
		},
		{
			name:         "falls_back_to_name",
			hub:          HubUser{ID: 1, Name: "Alice Liddell"},
			wantUsername: "Alice Liddell",
		},
		{
			name:         "placeholder_when_blank",
			hub:          HubUser{ID: 1},
			wantUsername: "User",
		},
		{
			name:         "either_admin_flag",
			hub:          HubUser{ID: 1, User: "root", Admin: true},
			wantUsername: "root",
			wantAdmin:    true,
		},
		{
			name:         "is_admin_flag",
			hub:          HubUser{ID: 1, User: "root", IsAdmin: true},
			wantUsername: "root",
			wantAdmin:    true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user := tc.hub.ToUser()
			require.Equal(t, tc.hub.ID, user.ID)
			require.Equal(t, tc.wantUsername, user.Username)
			require.Equal(t, tc.wantAdmin, user.IsAdmin)
		})
	}
}
