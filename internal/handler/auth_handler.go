package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/web"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/response"
)

const (
	csrfCookie      = "g_csrf_token"
	loginFailedText = "Google login failed"
)

// AuthHandler serves the login screen and the Google sign-in callback.
type AuthHandler struct {
	clientID string
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler for the Google client clientID.
func NewAuthHandler(clientID string, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{clientID: clientID, logger: logger}
}

// Index shows the login screen when unauthenticated, otherwise sends the
// browser to the current page.
func (h *AuthHandler) Index(c *gin.Context) {
	shell, ok := requireShell(c)
	if !ok {
		return
	}
	if shell.Screen() == console.ScreenLogin {
		h.renderLogin(c, http.StatusOK, "")
		return
	}
	response.Redirect(c, "/"+string(shell.Page()))
}

// GoogleCallback receives the redirect-mode credential post from Google
// Identity Services.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	shell, ok := requireShell(c)
	if !ok {
		return
	}

	cookieToken, err := c.Cookie(csrfCookie)
	bodyToken := c.PostForm(csrfCookie)
	if err != nil || cookieToken == "" || cookieToken != bodyToken {
		h.logger.Warn("google callback failed csrf check")
		h.renderLogin(c, http.StatusBadRequest, loginFailedText)
		return
	}

	if err := shell.Login(c.Request.Context(), c.PostForm("credential")); err != nil {
		_ = c.Error(err)
		h.renderLogin(c, appErrors.FromError(err).Status, loginMessage(err))
		return
	}
	response.Redirect(c, "/")
}

// Logout ends the session and returns to the login screen. A storage
// failure is logged; the in-memory session is cleared regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	shell, ok := requireShell(c)
	if !ok {
		return
	}
	if err := shell.Logout(c.Request.Context()); err != nil {
		h.logger.Warn("logout did not clear storage", zap.String("workspace", shell.ID()), zap.Error(err))
		_ = c.Error(err)
	}
	response.Redirect(c, "/")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, web.TemplateLogin, web.LoginPage{
		Layout:   web.Layout{Title: "Sign in"},
		ClientID: h.clientID,
		LoginURI: loginURI(c),
		Error:    message,
	})
}

// loginMessage surfaces the backend's own message and hides transport
// detail behind the generic text.
func loginMessage(err error) string {
	if errors.Is(err, appErrors.ErrBackend) || errors.Is(err, appErrors.ErrValidation) {
		return appErrors.Message(err, loginFailedText)
	}
	return loginFailedText
}

func loginURI(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/auth/google"
}
