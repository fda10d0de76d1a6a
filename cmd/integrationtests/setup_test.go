package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/hub"
	"auction-engine/internal/identity"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"

	"github.com/gin-gonic/gin"
)

// Well-known test credentials, mapped to hub identities by the stub
// resolver.
const (
	AdminToken = "admin-token"
	UserToken  = "user-token"
	VIPToken   = "vip-token"
)

type stubResolver struct {
	users map[string]identity.HubUser
}

func (s *stubResolver) Resolve(_ context.Context, token string) (identity.HubUser, error) {
	user, ok := s.users[token]
	if !ok {
		return identity.HubUser{}, identity.ErrUnauthorized
	}
	return user, nil
}

// TestEnv bundles the full wiring behind one router: store, service,
// hub and a stub identity resolver.
type TestEnv struct {
	Store    *repository.MemoryStore
	Service  *auction.AuctionService
	Hub      *hub.Hub
	Resolver *stubResolver
	Router   *gin.Engine
}

// SetupTestEnv initializes the router with the in-memory store and a
// stub identity hub for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	svc := auction.NewAuctionService(store, registry.New(store))
	resolver := &stubResolver{users: map[string]identity.HubUser{
		AdminToken: {ID: 100, User: "admin", IsAdmin: true, Balance: 0},
		UserToken:  {ID: 1, User: "alice", Balance: 10000},
		VIPToken:   {ID: 2, User: "vera", Premium: 1, Balance: 10000},
	}}

	h := hub.New(svc, store, resolver, time.Hour)
	svc.SetBroadcaster(h)
	h.Start(context.Background())
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Stop(stopCtx)
	})

	router := server.SetupRouter(svc, h, resolver, store)
	return &TestEnv{Store: store, Service: svc, Hub: h, Resolver: resolver, Router: router}
}

// ExecuteRequest executes an HTTP request with an optional bearer token
// and returns the response recorder.
func (env *TestEnv) ExecuteRequest(t *testing.T, method, url, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request and parses the JSON
// response into a generic map. Created resources are unwrapped from the
// response envelope.
func (env *TestEnv) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := env.ExecuteRequest(t, method, url, token, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if w.Code == 201 {
			resp = resp["data"].(map[string]any)
		}
	}
	return resp, w
}

// ParseList parses a JSON array response body.
func ParseList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var raw []any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal list response: %v", err)
	}
	out := make([]map[string]any, len(raw))
	for i, v := range raw {
		out[i] = v.(map[string]any)
	}
	return out
}
