package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, inbound string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return seen, rec.Header().Get(Header)
}

func TestReusesInboundID(t *testing.T) {
	seen, echoed := serve(t, "req-42")
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", echoed)
}

func TestGeneratesIDWhenMissingOrMalformed(t *testing.T) {
	for _, inbound := range []string{"", "has space", strings.Repeat("a", 200)} {
		seen, echoed := serve(t, inbound)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, inbound)
		assert.Equal(t, seen, echoed)
	}
}
