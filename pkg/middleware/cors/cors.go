package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Options configures the CORS middleware. An empty AllowedOrigins list allows any origin.
type Options struct {
	AllowedOrigins []string
	// ExposedHeaders are readable by browser clients, e.g. Content-Disposition on exports.
	ExposedHeaders []string
}

// New returns a CORS middleware for the dashboard frontend.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	originSet := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}
	exposed := strings.Join(opts.ExposedHeaders, ", ")

	return func(c *gin.Context) {
		header := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && (allowAll || hasOrigin(originSet, origin)):
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Add("Vary", "Origin")
		if exposed != "" {
			header.Set("Access-Control-Expose-Headers", exposed)
		}

		if c.Request.Method == http.MethodOptions {
			header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			header.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func hasOrigin(originSet map[string]struct{}, origin string) bool {
	_, ok := originSet[strings.TrimRight(origin, "/")]
	return ok
}
