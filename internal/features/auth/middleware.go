package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/pkg/response"
)

// anonymousProvider is the sign_in_provider Firebase stamps on anonymous sessions.
const anonymousProvider = "anonymous"

// TokenVerifier is satisfied by *firebase auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Authenticator resolves bearer tokens into identities: guest tokens are
// checked locally, everything else goes to Firebase.
type Authenticator struct {
	verifier TokenVerifier
	guests   *GuestIssuer
}

func NewAuthenticator(verifier TokenVerifier, guests *GuestIssuer) *Authenticator {
	return &Authenticator{verifier: verifier, guests: guests}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if a.guests != nil {
		if id, err := a.guests.Verify(token); err == nil {
			return id, nil
		} else if errors.Is(err, ErrExpiredToken) {
			return nil, err
		}
	}

	if a.verifier == nil {
		return nil, ErrInvalidToken
	}

	fbToken, err := a.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	id := &Identity{
		UserID:  fbToken.UID,
		IsGuest: fbToken.Firebase.SignInProvider == anonymousProvider,
	}
	if name, ok := fbToken.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if email, ok := fbToken.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// NewAuthMiddleware rejects requests without a valid identity.
func NewAuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		SetIdentity(c, id)
		c.Set("userID", id.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the identity when a valid token is present and
// otherwise lets the request through untouched.
func OptionalAuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if id, err := a.Authenticate(c.Request.Context(), token); err == nil {
				SetIdentity(c, id)
				c.Set("userID", id.UserID)
			}
		}
		c.Next()
	}
}
