package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gw2vault-api/internal/cache"
	"gw2vault-api/internal/gw2"
)

// Validation messages shown to the user.
const (
	MessageKeyRequired      = "API key is required"
	MessageKeyLength        = "API key must be 72 characters long"
	MessageValidationFailed = "Could not reach the Guild Wars 2 API"
)

// ValidationResult is the outcome of a key check. Message is empty when the key
// is valid.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Message     string   `json:"message,omitempty"`
	AccountName string   `json:"accountName,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Missing     []string `json:"missing,omitempty"`
}

// Verifier checks the permissions of one key. *gw2.Client implements it.
type Verifier interface {
	Verify(ctx context.Context) (*gw2.TokenInfo, error)
}

// VerifierFactory creates a verifier bound to one API key.
type VerifierFactory func(apiKey string) Verifier

// ValidationService answers whether a key can be used for a collection.
// Positive results are cached for ttl.
type ValidationService struct {
	newVerifier VerifierFactory
	cache       cache.Cache
	ttl         time.Duration
}

// NewValidationService creates a validation service. c may be nil.
func NewValidationService(newVerifier VerifierFactory, c cache.Cache, ttl time.Duration) *ValidationService {
	return &ValidationService{newVerifier: newVerifier, cache: c, ttl: ttl}
}

// Validate never fails; every problem is reported through the result.
func (s *ValidationService) Validate(ctx context.Context, apiKey string) ValidationResult {
	apiKey = NormalizeKey(apiKey)
	if apiKey == "" {
		return ValidationResult{Message: MessageKeyRequired}
	}
	if len(apiKey) != APIKeyLength {
		return ValidationResult{Message: MessageKeyLength}
	}

	cacheKey := cache.ValidationPrefix + KeyHash(apiKey)
	if s.cache != nil {
		if ok, err := s.cache.Exists(ctx, cacheKey); err == nil && ok {
			return ValidationResult{Valid: true}
		}
	}

	info, err := s.newVerifier(apiKey).Verify(ctx)
	if err != nil {
		return failedValidation(err)
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey, []byte{1}, s.ttl); err != nil {
			log.Printf("[ValidationService] Cache set failed: %v", err)
		}
	}

	return ValidationResult{
		Valid:       true,
		AccountName: info.Name,
		Permissions: info.Permissions,
	}
}

func failedValidation(err error) ValidationResult {
	var gwErr *gw2.Error
	if errors.As(err, &gwErr) {
		return ValidationResult{Message: gwErr.Error(), Missing: gwErr.Missing}
	}

	log.Printf("[ValidationService] Verify failed: %v", err)
	return ValidationResult{Message: MessageValidationFailed}
}
