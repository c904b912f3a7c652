package postman

import (
	"fmt"
	"net/http"
)

// AuthManager applies authentication to outgoing requests.
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// APIKeyAuth authenticates with the service's static key header.
type APIKeyAuth struct {
	key string
}

// NewAPIKeyAuth creates an APIKeyAuth for the given key.
func NewAPIKeyAuth(key string) *APIKeyAuth {
	return &APIKeyAuth{key: key}
}

// ApplyAuth sets the X-Api-Key header.
func (a *APIKeyAuth) ApplyAuth(req *http.Request) error {
	if a.key == "" {
		return fmt.Errorf("api key is not configured")
	}
	req.Header.Set("X-Api-Key", a.key)
	return nil
}
