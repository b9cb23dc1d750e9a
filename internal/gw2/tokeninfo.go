package gw2

import (
	"context"
	"encoding/json"
)

// RequiredPermissions are the scopes a key needs for a full collection.
var RequiredPermissions = []string{"account", "inventories", "characters"}

// CheckPermissions decodes a v2/tokeninfo body and verifies it grants every
// permission in required.
func CheckPermissions(body []byte, required []string) (*TokenInfo, error) {
	var raw struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Permissions json.RawMessage `json:"permissions"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Path: "v2/tokeninfo", Err: err}
	}

	var permissions []string
	if err := json.Unmarshal(raw.Permissions, &permissions); err != nil || permissions == nil {
		return nil, &Error{Kind: KindMalformedResponse, Path: "v2/tokeninfo", Err: err}
	}

	granted := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		granted[p] = true
	}

	var missing []string
	for _, p := range required {
		if !granted[p] {
			missing = append(missing, p)
		}
	}

	if len(missing) > 0 {
		return nil, &Error{
			Kind:    KindMissingPermissions,
			Path:    "v2/tokeninfo",
			Message: "API key is missing permissions",
			Missing: missing,
		}
	}

	return &TokenInfo{ID: raw.ID, Name: raw.Name, Type: raw.Type, Permissions: permissions}, nil
}

// Verify fetches v2/tokeninfo and checks the required permissions.
func (c *Client) Verify(ctx context.Context) (*TokenInfo, error) {
	body, err := c.TokenInfo(ctx)
	if err != nil {
		return nil, err
	}
	return CheckPermissions(body, RequiredPermissions)
}
