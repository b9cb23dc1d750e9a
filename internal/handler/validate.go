package handler

import (
	"net/http"

	"gw2vault-api/internal/middleware"
	"gw2vault-api/internal/service"
	"gw2vault-api/pkg/response"
)

// ValidateHandler checks API keys.
type ValidateHandler struct {
	validation *service.ValidationService
}

// NewValidateHandler creates a new validate handler.
func NewValidateHandler(validation *service.ValidationService) *ValidateHandler {
	return &ValidateHandler{validation: validation}
}

// Validate handles POST /api/v1/validate. It always answers 200; an unusable
// key is reported as {"valid": false, "message": ...}.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	result := h.validation.Validate(r.Context(), middleware.GetAPIKey(r.Context()))
	response.OK(w, result)
}
