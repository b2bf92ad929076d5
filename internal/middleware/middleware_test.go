package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

type stubValidator struct {
	tokens map[string]*models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type recordedRequest struct {
	method, path string
	status       int
}

type stubObserver struct {
	seen []recordedRequest
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.seen = append(s.seen, recordedRequest{method, path, status})
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func whoAmI(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, claims.UserID())
}

func serve(engine *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresBearerToken(t *testing.T) {
	validator := stubValidator{tokens: map[string]*models.JWTClaims{"good": {Email: "a@b.c"}}}
	validator.tokens["good"].Subject = "user-1"
	engine := newEngine()
	engine.GET("/me", JWT(validator), whoAmI)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, "Bearer bad").Code)

	rec := serve(engine, "bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	claims := &models.JWTClaims{}
	claims.Subject = "user-2"
	engine := newEngine()
	engine.GET("/me", OptionalJWT(stubValidator{tokens: map[string]*models.JWTClaims{"good": claims}}), whoAmI)

	assert.Equal(t, "anonymous", serve(engine, "").Body.String())
	assert.Equal(t, "anonymous", serve(engine, "Bearer expired").Body.String())
	assert.Equal(t, "user-2", serve(engine, "Bearer good").Body.String())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &stubObserver{}
	engine := newEngine()
	engine.Use(Metrics(observer, "/metrics"))
	engine.GET("/classes/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/classes/42", "/metrics", "/missing"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, observer.seen, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/classes/:id", http.StatusNoContent}, observer.seen[0])
	assert.Equal(t, recordedRequest{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
}

func TestSetCacheHitWritesMetaAndHeader(t *testing.T) {
	engine := newEngine()
	engine.Use(WithResponseMeta())
	var meta map[string]interface{}
	engine.GET("/week", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/week", nil))

	assert.Equal(t, "HIT", rec.Header().Get(CacheStatusHeader))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}
