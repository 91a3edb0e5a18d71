package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// GuestIDPrefix marks synthetic identifiers handed to guest sessions.
	GuestIDPrefix = "guest_"

	identityKey = "identity"
)

// Identity is the caller as established by the identity provider. The report
// core trusts it as given.
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	IsGuest     bool   `json:"isGuest"`
}

// IsRegistered is false for guests and anonymous provider sessions.
func (i *Identity) IsRegistered() bool {
	return i != nil && i.UserID != "" && !i.IsGuest
}

// IsGuestID reports whether id was minted for a guest session.
func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestIDPrefix)
}

// SetIdentity stores the caller on the gin context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the caller set by the middleware, if any.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

// GuestSessionRequest is the optional body of POST /auth/guest.
type GuestSessionRequest struct {
	DisplayName string `json:"displayName" binding:"omitempty,max=50"`
}

// GuestSessionResponse carries the signed guest token.
type GuestSessionResponse struct {
	Identity    *Identity `json:"identity"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   int64     `json:"expiresAt"`
}
