package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// OIDCAuthenticator validates bearer tokens against an external identity
// provider's userinfo endpoint. It is the alternative to the local JWT
// manager for deployments with a central IdP.
type OIDCAuthenticator struct {
	config *oauth2.Config
	issuer string
}

func NewOIDCAuthenticator(issuer, clientID, clientSecret string) (*OIDCAuthenticator, error) {
	if issuer == "" || clientID == "" {
		return nil, fmt.Errorf("OIDC configuration incomplete")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/authorize", issuer),
			TokenURL: fmt.Sprintf("%s/token", issuer),
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	return &OIDCAuthenticator{
		config: config,
		issuer: issuer,
	}, nil
}

func (a *OIDCAuthenticator) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	resp, err := client.Get(fmt.Sprintf("%s/userinfo", a.issuer))
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo rejected token: status %d", resp.StatusCode)
	}

	var info struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Role    string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}

	return &Claims{
		Issuer:  a.issuer,
		Subject: info.Subject,
		Email:   info.Email,
		Role:    info.Role,
	}, nil
}
