package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HTTPConfig configures the REST directory adapter.
type HTTPConfig struct {
	// BaseURL is the root of the directory service API.
	BaseURL string `yaml:"baseURL"`

	// ClientID and ClientSecret are the client-credentials used to obtain a
	// bearer token from the directory's token endpoint.
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`

	// RequestTimeout bounds each directory call (e.g. "10s").
	RequestTimeout string `yaml:"requestTimeout"`

	// CacheTTL controls how long role membership responses are reused
	// (e.g. "10m").
	CacheTTL string `yaml:"cacheTTL"`
}

// HTTPClient is a Directory backed by a REST directory service. Role lookups
// are cached for a configurable TTL; an unconfigured client skips lookups
// gracefully rather than failing.
type HTTPClient struct {
	log    *zap.SugaredLogger
	cfg    HTTPConfig
	client *http.Client
	cache  *roleCache
}

type roleCache struct {
	mu    sync.RWMutex
	items map[string]roleEntry
	ttl   time.Duration
}

type roleEntry struct {
	users   []User
	expires time.Time
}

func newRoleCache(ttl time.Duration) *roleCache {
	return &roleCache{items: map[string]roleEntry{}, ttl: ttl}
}

func (c *roleCache) get(k string) ([]User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[k]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return append([]User(nil), e.users...), true
}

func (c *roleCache) set(k string, v []User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[k] = roleEntry{users: append([]User(nil), v...), expires: time.Now().Add(c.ttl)}
}

// NewHTTPClient creates an HTTPClient from config.
func NewHTTPClient(log *zap.SugaredLogger, cfg HTTPConfig) *HTTPClient {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	timeout := 10 * time.Second
	if d, err := time.ParseDuration(cfg.RequestTimeout); err == nil && d > 0 {
		timeout = d
	}
	ttl := 10 * time.Minute
	if d, err := time.ParseDuration(cfg.CacheTTL); err == nil && d > 0 {
		ttl = d
	}
	return &HTTPClient{
		log:    log.Named("directory"),
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cache:  newRoleCache(ttl),
	}
}

func (h *HTTPClient) configured() bool {
	return h.cfg.BaseURL != "" && h.cfg.ClientID != ""
}

func (h *HTTPClient) token(ctx context.Context) (string, error) {
	if h.cfg.ClientSecret == "" {
		return "", errors.New("directory clientSecret empty; only client_credentials supported")
	}
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", h.cfg.ClientID)
	form.Set("client_secret", h.cfg.ClientSecret)
	tokenURL := strings.TrimRight(h.cfg.BaseURL, "/") + "/token"
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory token status %d", resp.StatusCode)
	}
	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", errors.New("empty directory access_token")
	}
	return tr.AccessToken, nil
}

func (h *HTTPClient) get(ctx context.Context, path string, out any) error {
	token, err := h.token(ctx)
	if err != nil {
		return fmt.Errorf("obtaining directory token: %w", err)
	}
	u := strings.TrimRight(h.cfg.BaseURL, "/") + path
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warnw("Directory request failed", "url", u, "error", err)
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		h.log.Warnw("Directory request returned non-200 status",
			"status", resp.StatusCode, "url", u, "took", time.Since(start).String(),
			"body", string(bytes.TrimSpace(body)))
		return fmt.Errorf("directory status %d for %s", resp.StatusCode, path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		h.log.Debugw("Failed to decode directory response", "url", u, "error", err)
		return err
	}
	h.log.Debugw("Directory request completed", "url", u, "took", time.Since(start).String())
	return nil
}

var errNotFound = errors.New("directory: not found")

// UsersByRole implements Directory. Results are cached per role for the
// configured TTL. An unconfigured client returns an empty slice.
func (h *HTTPClient) UsersByRole(ctx context.Context, role string) ([]User, error) {
	if !h.configured() {
		h.log.Debugw("Directory not configured; skipping role lookup", "role", role)
		return []User{}, nil
	}
	if users, ok := h.cache.get(role); ok {
		h.log.Debugw("Directory cache hit for role", "role", role, "userCount", len(users))
		return users, nil
	}
	var users []User
	if err := h.get(ctx, "/roles/"+url.PathEscape(role)+"/users", &users); err != nil {
		if errors.Is(err, errNotFound) {
			h.cache.set(role, []User{})
			return []User{}, nil
		}
		return nil, err
	}
	h.cache.set(role, users)
	h.log.Infow("Resolved directory role members", "role", role, "resolvedCount", len(users))
	return users, nil
}

// UserByID implements Directory. Missing users map to (nil, nil).
func (h *HTTPClient) UserByID(ctx context.Context, id int64) (*User, error) {
	if !h.configured() {
		return nil, nil
	}
	var u User
	if err := h.get(ctx, fmt.Sprintf("/users/%d", id), &u); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Roles implements Directory.
func (h *HTTPClient) Roles(ctx context.Context) ([]string, error) {
	if !h.configured() {
		return []string{}, nil
	}
	var roles []string
	if err := h.get(ctx, "/roles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// EntityTypes implements Directory.
func (h *HTTPClient) EntityTypes(ctx context.Context, publicOnly bool) ([]string, error) {
	if !h.configured() {
		return []string{}, nil
	}
	path := "/entity-types"
	if publicOnly {
		path += "?public=true"
	}
	var types []string
	if err := h.get(ctx, path, &types); err != nil {
		return nil, err
	}
	return types, nil
}
