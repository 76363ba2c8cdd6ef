package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/session"
	"github.com/noah-isme/academic-console/pkg/response"
)

// ContextShellKey is the gin context key storing the request's workspace.
const ContextShellKey = "consoleShell"

// Workspaces resolves a workspace id to its shell.
type Workspaces interface {
	Get(ctx context.Context, id string) (*console.Shell, error)
}

// WorkspaceConfig configures the console cookie.
type WorkspaceConfig struct {
	CookieName string
	Secure     bool
}

// Workspace attaches the browser's workspace to the request. A missing or
// invalid cookie starts a fresh workspace and issues a new cookie.
func Workspace(workspaces Workspaces, signer *session.CookieSigner, cfg WorkspaceConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(cfg.CookieName); err == nil && raw != "" {
			parsed, parseErr := signer.Parse(raw)
			if parseErr != nil {
				logger.Debug("rejecting console cookie", zap.Error(parseErr))
			} else {
				id = parsed
			}
		}

		if id == "" {
			id = session.NewWorkspaceID()
			value, err := signer.Issue(id)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, value, int(signer.TTL().Seconds()), "/", "", cfg.Secure, true)
		}

		shell, err := workspaces.Get(c.Request.Context(), id)
		if err != nil {
			logger.Error("failed to open workspace", zap.String("workspace", id), zap.Error(err))
			abortWithError(c, err)
			return
		}

		c.Set(ContextShellKey, shell)
		c.Next()
	}
}

// ShellFromContext returns the workspace attached by Workspace.
func ShellFromContext(c *gin.Context) *console.Shell {
	value, exists := c.Get(ContextShellKey)
	if !exists {
		return nil
	}
	shell, ok := value.(*console.Shell)
	if !ok {
		return nil
	}
	return shell
}

func abortWithError(c *gin.Context, err error) {
	if wantsJSON(c) {
		response.Error(c, err)
	} else {
		response.ErrorPage(c, err)
	}
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
