package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/api/middleware"
	"checkpoint-backend/internal/domain"
)

var errNoAuthenticatedUser = errors.New("no authenticated user in context")

// getProfileFromContext resolves the acting operator from the verified
// token's subject set by the auth middleware.
func getProfileFromContext(ctx *gin.Context, svc AuthService) (domain.Profile, *response.Err) {
	userID, ok := ctx.Get(middleware.CtxKeyUserID)
	if !ok {
		return domain.Profile{}, response.ErrUnauthorized(errNoAuthenticatedUser)
	}

	id, ok := userID.(uint)
	if !ok {
		return domain.Profile{}, response.ErrUnauthorized(errNoAuthenticatedUser)
	}

	profile, err := svc.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		return domain.Profile{}, response.ErrInternalServerError(
			fmt.Errorf("v1.getProfileFromContext -> svc.GetProfile -> %w", err))
	}

	return profile, nil
}
