package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-agenda-api/internal/middleware"
	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID is empty for anonymous callers.
func currentUserID(c *gin.Context) string {
	return claimsFromContext(c).UserID()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func cacheMeta(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{"cache_hit": hit}
	}
	return meta
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
