// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"business-directory/internal/common/errors"
	"business-directory/internal/models"
)

// KeycloakClient resolves bearer tokens to users through the realm's
// OpenID Connect userinfo endpoint.
type KeycloakClient struct {
	baseURL    string
	realm      string
	clientID   string
	httpClient *http.Client
}

// userInfo is the subset of the OIDC userinfo claims the directory uses.
type userInfo struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

func NewKeycloakClient(baseURL, realm, clientID string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		realm:      realm,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetCurrentUser returns nil, nil when the token is empty or rejected.
// Transport failures and unexpected statuses are errors.
func (k *KeycloakClient) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, nil
	}

	userInfoURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/userinfo", k.baseURL, k.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("keycloak", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewExternalServiceError("keycloak",
			fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.NewAuthenticationError("userinfo response has no subject")
	}

	name := info.Name
	if name == "" {
		name = info.PreferredUsername
	}
	return &models.User{
		ID:            info.Sub,
		Email:         info.Email,
		Name:          name,
		EmailVerified: info.EmailVerified,
	}, nil
}
