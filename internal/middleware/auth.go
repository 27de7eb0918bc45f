package middleware

import (
	"strings"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/session"
	"github.com/gin-gonic/gin"
)

// AuthRequired resolves the bearer token to a live session and stores it in
// the request context.
func AuthRequired(uc session.UseCase, resp *httpx.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := uc.Authorize(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			resp.Error(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
