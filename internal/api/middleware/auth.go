package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/pkg/jwthelper"
)

// CtxKeyUserID is the gin context key the verified operator ID is
// stored under.
const CtxKeyUserID = "user_id"

var errMissingToken = errors.New("missing or malformed authorization header")

type Authenticator struct {
	signingKey string
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			ctx.Abort()
			return
		}

		claims, err := jwthelper.ParseToken([]byte(a.signingKey), token, ctx.Request.UserAgent())
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			ctx.Abort()
			return
		}

		ctx.Set(CtxKeyUserID, claims.UserID)
		ctx.Next()
	}
}
