package trackerserver

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	usertypes "github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	apierrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

const sessionIDKey = "sessionID"

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*usertypes.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// actor on the request context.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			responder.Unauthorized(c, "missing bearer token")
			return
		}
		if authenticator == nil {
			responder.RespondError(c, errors.New("authentication not configured"))
			return
		}
		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, apierrors.ErrUnauthorized) || errors.Is(err, apierrors.ErrNotFound) {
				responder.Unauthorized(c, err.Error())
				return
			}
			responder.RespondError(c, err)
			return
		}
		c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), principal.Actor))
		c.Set(sessionIDKey, principal.SessionID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// actorFrom returns the authenticated caller; RequireAuth guarantees one on
// protected routes.
func actorFrom(c *gin.Context) identity.Actor {
	actor, _ := identity.ActorFromContext(c.Request.Context())
	return actor
}
