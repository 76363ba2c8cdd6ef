package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/academic-console/internal/models"
)

// GoogleLogin exchanges a Google Identity Services credential for a session token.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (Result[models.AuthResponse], error) {
	return doResult[models.AuthResponse](ctx, c, call{
		operation: "google_login",
		method:    http.MethodPost,
		path:      "/api/auth/google",
		body:      models.GoogleLoginRequest{Credential: credential},
	})
}

// Logout ends the backend session identified by token.
func (c *Client) Logout(ctx context.Context, token string) (Result[models.MessageResponse], error) {
	return doResult[models.MessageResponse](ctx, c, call{
		operation: "logout",
		method:    http.MethodPost,
		path:      "/api/auth/logout",
		token:     token,
	})
}
