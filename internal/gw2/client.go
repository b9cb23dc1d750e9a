package gw2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the public Guild Wars 2 API host.
	DefaultBaseURL = "https://api.guildwars2.com"

	// DefaultTimeout bounds every single remote call.
	DefaultTimeout = 30 * time.Second

	// MaxBulkIDs is the server-side limit of ids per bulk request.
	MaxBulkIDs = 200

	invalidKeyText = "invalid key"
)

// Client talks to the Guild Wars 2 API on behalf of one API key.
type Client struct {
	apiKey  string
	timeout time.Duration
	http    *resty.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithTimeout sets the per-call deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) { o.timeout = timeout }
}

// WithHTTPClient sets the HTTP primitive used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// NewClient creates a client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	o := clientOptions{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(o.baseURL)
	rc.SetHeader("Accept", "application/json")

	return &Client{
		apiKey:  apiKey,
		timeout: o.timeout,
		http:    rc,
	}
}

// Get requests path (e.g. "v2/account") and returns the raw body of a 2xx
// response. Anonymous calls omit the Authorization header.
func (c *Client) Get(ctx context.Context, path string, authenticated bool) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := c.http.R().SetContext(ctx)
	if authenticated {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Get(path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Path: path, Err: err}
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	if resp.IsSuccess() {
		return resp.Body(), nil
	}

	return nil, classify(path, resp.StatusCode(), resp.Status(), resp.Header().Get("Content-Type"), resp.Body())
}

// classify converts a non-2xx response into an *Error.
func classify(path string, code int, status, contentType string, body []byte) *Error {
	text := bodyText(contentType, body)

	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized:
		// 401: key absent or malformed; 400: key invalid or other bad parameters.
		if text == invalidKeyText {
			return &Error{Kind: KindInvalidAPIKey, Path: path, StatusCode: code, Body: text}
		}
		return &Error{Kind: KindRequestRejected, Path: path, StatusCode: code, Body: text, Message: text}
	}

	statusText := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if statusText == "" {
		statusText = http.StatusText(code)
	}

	log.Printf("[GW2Client] GET %s -> %d %s", path, code, statusText)

	return &Error{
		Kind:       KindUnexpectedStatus,
		Path:       path,
		StatusCode: code,
		StatusText: statusText,
		Body:       text,
	}
}

// bodyText extracts the error text: the "text" field of a JSON body, or the
// body itself.
func bodyText(contentType string, body []byte) string {
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			return payload.Text
		}
		return ""
	}
	return string(body)
}

// getJSON fetches path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, authenticated bool, out interface{}) error {
	body, err := c.Get(ctx, path, authenticated)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindMalformedResponse, Path: path, Message: "Invalid response format", Err: err}
	}
	return nil
}

// TokenInfo returns the raw v2/tokeninfo body; permissions are checked by the caller.
func (c *Client) TokenInfo(ctx context.Context) ([]byte, error) {
	return c.Get(ctx, "v2/tokeninfo", true)
}

func (c *Client) Account(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.getJSON(ctx, "v2/account", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccountInventory(ctx context.Context) ([]*Slot, error) {
	var out []*Slot
	if err := c.getJSON(ctx, "v2/account/inventory", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AccountBank(ctx context.Context) ([]*Slot, error) {
	var out []*Slot
	if err := c.getJSON(ctx, "v2/account/bank", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AccountMaterials(ctx context.Context) ([]Material, error) {
	var out []Material
	if err := c.getJSON(ctx, "v2/account/materials", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CharacterNames(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "v2/characters", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CharacterCore(ctx context.Context, name string) (*CharacterCore, error) {
	var out CharacterCore
	if err := c.getJSON(ctx, characterPath(name, "core"), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CharacterInventory(ctx context.Context, name string) (*CharacterInventory, error) {
	var out CharacterInventory
	if err := c.getJSON(ctx, characterPath(name, "inventory"), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CharacterEquipmentTabs(ctx context.Context, name string) ([]EquipmentTab, error) {
	var out []EquipmentTab
	if err := c.getJSON(ctx, characterPath(name, "equipmenttabs")+"?tabs=all", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Items resolves up to MaxBulkIDs item ids. The endpoint is public.
func (c *Client) Items(ctx context.Context, ids []int) ([]Item, error) {
	if len(ids) > MaxBulkIDs {
		log.Printf("[GW2Client] Items: API only supports %d ids at a time, got %d", MaxBulkIDs, len(ids))
	}

	var out []Item
	if err := c.getJSON(ctx, "v2/items?ids="+JoinIDs(ids), false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Itemstats resolves up to MaxBulkIDs itemstat ids. The endpoint is public.
func (c *Client) Itemstats(ctx context.Context, ids []int) ([]Itemstat, error) {
	if len(ids) > MaxBulkIDs {
		log.Printf("[GW2Client] Itemstats: API only supports %d ids at a time, got %d", MaxBulkIDs, len(ids))
	}

	var out []Itemstat
	if err := c.getJSON(ctx, "v2/itemstats?ids="+JoinIDs(ids), false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func characterPath(name, resource string) string {
	return "v2/characters/" + url.PathEscape(name) + "/" + resource
}

// JoinIDs renders ids as a comma separated list.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
