package middleware

import (
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"juba-homez/internal/services"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	userKey     = "user"
)

// Authenticator resolves a bearer token to the current user row.
type Authenticator struct {
	tokens *services.TokenService
	users  *services.UserService
}

func NewAuthenticator(tokens *services.TokenService, users *services.UserService) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Required rejects requests without a valid token (401) and requests from
// accounts that are no longer active (403).
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolve(c)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		setIdentity(c, user)
		c.Next()
	}
}

// Optional populates the identity when a valid token of an active account is
// present and otherwise lets the request through anonymously.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.resolve(c); err == nil {
			setIdentity(c, user)
		}
		c.Next()
	}
}

// resolve verifies the token and re-reads the user, so suspensions and role
// changes apply to tokens issued before them.
func (a *Authenticator) resolve(c *gin.Context) (*models.User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, authz.ErrUnauthenticated
	}

	// Extract token from "Bearer <token>"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, services.ErrInvalidToken
	}

	claims, err := a.tokens.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, services.ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != models.UserActive {
		return nil, services.ErrAccountNotActive
	}
	return user, nil
}

func setIdentity(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
	c.Set(identityKey, &authz.Identity{UserID: user.ID, Role: user.Role})
}

// Identity returns the caller, or nil for anonymous requests.
func Identity(c *gin.Context) *authz.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*authz.Identity)
	return id
}

// CurrentUser returns the caller's user row, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
