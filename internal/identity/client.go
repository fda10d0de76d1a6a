package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	model "auction-engine/internal/models"
)

// ErrUnauthorized is returned when the hub rejects the credential.
var ErrUnauthorized = errors.New("identity: credential rejected by hub")

// Resolver turns an opaque credential into a hub identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (HubUser, error)
}

// HubUser is the identity record as the hub reports it.
type HubUser struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	User    string  `json:"username"`
	Avatar  string  `json:"avatar"`
	IsAdmin bool    `json:"isAdmin"`
	Admin   bool    `json:"admin"`
	Premium int     `json:"premium"`
	Balance float64 `json:"balance"`
}

// ToUser maps the hub record onto the local user model.
func (h HubUser) ToUser() model.User {
	username := h.User
	if username == "" {
		username = h.Name
	}
	if username == "" {
		username = "User"
	}
	return model.User{
		ID:       h.ID,
		Username: username,
		Avatar:   h.Avatar,
		IsAdmin:  h.IsAdmin || h.Admin,
		Premium:  h.Premium,
		Balance:  h.Balance,
	}
}

// Client resolves credentials against the identity hub's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a hub client for the given base URL, e.g.
// http://localhost:8000/api.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve fetches the identity behind a bearer token.
func (c *Client) Resolve(ctx context.Context, token string) (HubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oauth/user", nil)
	if err != nil {
		return HubUser{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HubUser{}, fmt.Errorf("identity: hub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return HubUser{}, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return HubUser{}, fmt.Errorf("identity: hub returned status %d", resp.StatusCode)
	}

	var user HubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return HubUser{}, fmt.Errorf("identity: decode hub response: %w", err)
	}
	return user, nil
}
