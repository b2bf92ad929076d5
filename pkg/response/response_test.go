package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-agenda-api/internal/models"
	appErrors "github.com/noah-isme/lms-agenda-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWritesEnvelope(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, []string{"T2"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, map[string]interface{}{"cache_hit": true})

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `["T2"]`, string(body["data"]))
	assert.JSONEq(t, `{"cache_hit":true}`, string(body["meta"]))
	assert.Contains(t, body, "pagination")
	assert.NotContains(t, body, "error")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, rec := newContext()
	Error(c, appErrors.Clone(appErrors.ErrNotFound, "class not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"class not found","status":404}}`, rec.Body.String())

	c, rec = newContext()
	Error(c, errors.New("driver: bad connection"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "timetable-2024-11-11.pdf", "application/pdf", []byte("%PDF-1.3"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="timetable-2024-11-11.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}
