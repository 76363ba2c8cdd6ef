package response

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

func TestJSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSON(c, http.StatusOK, gin.H{"authenticated": true}, map[string]interface{}{"page": "courses"})

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"authenticated":true},"meta":{"page":"courses"}}`, w.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin only"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	assert.Equal(t, "admin only", env.Error.Message)
	assert.Len(t, c.Errors, 1)
}

func TestErrorPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	engine.SetHTMLTemplate(template.Must(template.New(ErrorTemplate).Parse(`{{.Status}} {{.Code}} {{.Message}}`)))

	ErrorPage(c, appErrors.ErrStorage)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "503 STORAGE_ERROR session storage unavailable", w.Body.String())
}

func TestRedirectIsSeeOther(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)

	Redirect(c, "/")
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
