package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/middleware"
	"github.com/noah-isme/academic-console/internal/web"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/response"
)

func shellFromContext(c *gin.Context) *console.Shell {
	return middleware.ShellFromContext(c)
}

// requireShell returns the request's workspace or writes an error page.
func requireShell(c *gin.Context) (*console.Shell, bool) {
	shell := shellFromContext(c)
	if shell == nil {
		response.ErrorPage(c, appErrors.Clone(appErrors.ErrInternal, "workspace missing"))
		return nil, false
	}
	return shell, true
}

func layoutFor(shell *console.Shell, title string) web.Layout {
	snap := shell.Session().Snapshot()
	return web.Layout{
		Title:   title,
		Page:    shell.Page(),
		Role:    snap.Role,
		IsAdmin: snap.IsAdmin(),
	}
}
