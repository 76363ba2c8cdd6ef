package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/internal/service"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/export"
	"github.com/noah-isme/academic-console/pkg/response"
)

// listBinding adapts one entity type to the generic list handler.
type listBinding[T any] struct {
	page       models.Page
	template   string
	controller func(*console.Shell) *listview.Controller[T]
	bind       func(*gin.Context) (T, error)
	present    func(shell *console.Shell, view listview.View[T], alert string) interface{}
	export     func(items []T, format export.Format) (*service.ExportFile, error)
}

// ListHandler serves the list page of one entity type and its admin
// controls. State lives in the browser's workspace; every POST ends in a
// redirect to the page unless it has an error to show.
type ListHandler[T any] struct {
	binding listBinding[T]
	logger  *zap.Logger
}

func newListHandler[T any](binding listBinding[T], logger *zap.Logger) *ListHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListHandler[T]{binding: binding, logger: logger}
}

// Show navigates to the page, applies ?q= and renders the list.
func (h *ListHandler[T]) Show(c *gin.Context) {
	shell, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	shell.Navigate(h.binding.page)
	if q, present := c.GetQuery("q"); present {
		ctl.Search(q)
	}
	shell.Mount(c.Request.Context())
	h.render(c, shell, http.StatusOK, "")
}

// Reload forces a fresh load of the collection.
func (h *ListHandler[T]) Reload(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	ctl.Reload(c.Request.Context())
	h.back(c)
}

// OpenCreate opens the empty form.
func (h *ListHandler[T]) OpenCreate(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	ctl.OpenCreate()
	h.back(c)
}

// OpenEdit opens the form on a loaded record.
func (h *ListHandler[T]) OpenEdit(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	if err := ctl.OpenEdit(id); err != nil {
		response.ErrorPage(c, err)
		return
	}
	h.back(c)
}

// CloseForm dismisses the form.
func (h *ListHandler[T]) CloseForm(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	ctl.CloseForm()
	h.back(c)
}

// Submit saves the posted form. Failures re-render the page with the form
// still open and the message inline. A post for a form that is no longer
// open reopens it with the posted values instead of saving.
func (h *ListHandler[T]) Submit(c *gin.Context) {
	shell, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	draft, err := h.binding.bind(c)
	if err != nil {
		h.render(c, shell, http.StatusBadRequest, appErrors.Message(err, "invalid form"))
		return
	}
	if ctl.ResumeForm(draft, c.PostForm("editing") == "true") {
		shell.Navigate(h.binding.page)
		shell.Mount(c.Request.Context())
		h.render(c, shell, http.StatusConflict, listview.FormExpiredMessage)
		return
	}
	ctl.UpdateDraft(draft)
	if err := ctl.Submit(c.Request.Context()); err != nil {
		_ = c.Error(err)
		h.render(c, shell, appErrors.FromError(err).Status, "")
		return
	}
	h.back(c)
}

// RequestDelete asks for confirmation before deleting.
func (h *ListHandler[T]) RequestDelete(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	if err := ctl.RequestDelete(id); err != nil {
		response.ErrorPage(c, err)
		return
	}
	h.back(c)
}

// ConfirmDelete deletes the record awaiting confirmation.
func (h *ListHandler[T]) ConfirmDelete(c *gin.Context) {
	shell, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	if err := ctl.ConfirmDelete(c.Request.Context()); err != nil {
		_ = c.Error(err)
		h.render(c, shell, appErrors.FromError(err).Status, appErrors.Message(err, "delete failed"))
		return
	}
	h.back(c)
}

// CancelDelete drops the pending confirmation.
func (h *ListHandler[T]) CancelDelete(c *gin.Context) {
	_, ctl, ok := h.resolve(c)
	if !ok {
		return
	}
	ctl.CancelDelete()
	h.back(c)
}

// Export returns a handler downloading the filtered list in format.
func (h *ListHandler[T]) Export(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ctl, ok := h.resolve(c)
		if !ok {
			return
		}
		ctl.Mount(c.Request.Context())
		file, err := h.binding.export(ctl.View().Items, format)
		if err != nil {
			response.ErrorPage(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
		c.Data(http.StatusOK, file.ContentType, file.Body)
	}
}

func (h *ListHandler[T]) resolve(c *gin.Context) (*console.Shell, *listview.Controller[T], bool) {
	shell, ok := requireShell(c)
	if !ok {
		return nil, nil, false
	}
	return shell, h.binding.controller(shell), true
}

func (h *ListHandler[T]) render(c *gin.Context, shell *console.Shell, status int, alert string) {
	view := h.binding.controller(shell).View()
	c.Header("Cache-Control", "no-store")
	c.HTML(status, h.binding.template, h.binding.present(shell, view, alert))
}

func (h *ListHandler[T]) back(c *gin.Context) {
	response.Redirect(c, "/"+string(h.binding.page))
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}
