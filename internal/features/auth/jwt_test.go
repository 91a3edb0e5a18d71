package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGuestIssuerRoundTrip(t *testing.T) {
	g := NewGuestIssuer("secret", time.Hour)

	id, token, expiresAt, err := g.Issue("  Visitor  ")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id.UserID, GuestIDPrefix))
	require.True(t, IsGuestID(id.UserID))
	require.Equal(t, "Visitor", id.DisplayName)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	verified, err := g.Verify(token)
	require.NoError(t, err)
	require.Equal(t, id.UserID, verified.UserID)
	require.True(t, verified.IsGuest)
	require.False(t, verified.IsRegistered())
}

func TestGuestIssuerDistinctIDs(t *testing.T) {
	g := NewGuestIssuer("secret", time.Hour)
	a, _, _, err := g.Issue("")
	require.NoError(t, err)
	b, _, _, err := g.Issue("")
	require.NoError(t, err)
	require.NotEqual(t, a.UserID, b.UserID)
}

func TestGuestIssuerRejectsForeignSecret(t *testing.T) {
	_, token, _, err := NewGuestIssuer("one", time.Hour).Issue("")
	require.NoError(t, err)

	_, err = NewGuestIssuer("two", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGuestIssuerExpired(t *testing.T) {
	g := NewGuestIssuer("secret", time.Minute)
	g.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, token, _, err := g.Issue("")
	require.NoError(t, err)

	g.now = time.Now
	_, err = g.Verify(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestIdentityIsRegistered(t *testing.T) {
	var nilID *Identity
	require.False(t, nilID.IsRegistered())
	require.False(t, (&Identity{}).IsRegistered())
	require.False(t, (&Identity{UserID: "guest_1", IsGuest: true}).IsRegistered())
	require.True(t, (&Identity{UserID: "uid"}).IsRegistered())
}
