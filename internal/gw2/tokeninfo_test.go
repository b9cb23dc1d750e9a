package gw2

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestCheckPermissions(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        error
		wantMissing []string
	}{
		{
			name: "all granted",
			body: `{"id":"k","name":"main","permissions":["account","inventories","characters","wallet"]}`,
		},
		{
			name:        "missing inventories",
			body:        `{"id":"k","name":"main","permissions":["account","characters"]}`,
			want:        ErrMissingPermissions,
			wantMissing: []string{"inventories"},
		},
		{
			name:        "no permissions",
			body:        `{"id":"k","name":"main","permissions":[]}`,
			want:        ErrMissingPermissions,
			wantMissing: []string{"account", "inventories", "characters"},
		},
		{
			name: "permissions not a list",
			body: `{"id":"k","name":"main","permissions":"account"}`,
			want: ErrMalformedResponse,
		},
		{
			name: "permissions absent",
			body: `{"id":"k","name":"main"}`,
			want: ErrMalformedResponse,
		},
		{
			name: "not json",
			body: `<html>`,
			want: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := CheckPermissions([]byte(tt.body), RequiredPermissions)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if info.Name != "main" {
					t.Errorf("info = %+v", info)
				}
				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var gwErr *Error
			errors.As(err, &gwErr)
			if tt.want == ErrMissingPermissions {
				if err.Error() != "API key is missing permissions" {
					t.Errorf("message = %q", err.Error())
				}
				if !reflect.DeepEqual(gwErr.Missing, tt.wantMissing) {
					t.Errorf("missing = %v, want %v", gwErr.Missing, tt.wantMissing)
				}
			}
			if tt.want == ErrMalformedResponse && err.Error() != "Invalid response format" {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestVerify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/tokeninfo" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"k","name":"main","permissions":["account","inventories","characters"]}`))
	})

	info, err := c.Verify(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Permissions) != 3 {
		t.Errorf("permissions = %v", info.Permissions)
	}
}
