package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

// ErrorTemplate is the HTML template rendered by ErrorPage.
const ErrorTemplate = "error.html"

// Envelope represents the common JSON response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success envelope with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error envelope converting err to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// ErrorPage renders the HTML error page for err.
func ErrorPage(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.HTML(appErr.Status, ErrorTemplate, gin.H{
		"Status":  appErr.Status,
		"Title":   http.StatusText(appErr.Status),
		"Code":    appErr.Code,
		"Message": appErr.Message,
	})
}

// Redirect sends a 303 so that a POST is followed by a GET.
func Redirect(c *gin.Context, location string) {
	noStore(c)
	c.Redirect(http.StatusSeeOther, location)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
