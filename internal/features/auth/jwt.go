package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	guestIssuer      = "reportabaches-guest"
	defaultGuestName = "Guest"
)

// guestClaims are carried by guest session tokens.
type guestClaims struct {
	Name  string `json:"name"`
	Guest bool   `json:"guest"`
	jwt.RegisteredClaims
}

// GuestIssuer mints and checks HS256 tokens for guest sessions.
type GuestIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGuestIssuer(secret string, ttl time.Duration) *GuestIssuer {
	return &GuestIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a fresh guest identity and its signed token.
func (g *GuestIssuer) Issue(displayName string) (*Identity, string, time.Time, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultGuestName
	}

	id := &Identity{
		UserID:      GuestIDPrefix + uuid.NewString(),
		DisplayName: name,
		IsGuest:     true,
	}

	now := g.now()
	expiresAt := now.Add(g.ttl)
	claims := guestClaims{
		Name:  name,
		Guest: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    guestIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return id, signed, expiresAt, nil
}

// Verify parses a guest token and returns its identity.
func (g *GuestIssuer) Verify(tokenString string) (*Identity, error) {
	var claims guestClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithIssuer(guestIssuer),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !claims.Guest || !IsGuestID(claims.Subject) {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		IsGuest:     true,
	}, nil
}
