package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/console"
	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/internal/service"
	"github.com/noah-isme/academic-console/internal/web"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/response"
)

type specialisationForm struct {
	SpecialisationID int    `form:"specialisationId"`
	Code             string `form:"code"`
	Name             string `form:"name"`
	Description      string `form:"description"`
	Year             int    `form:"year"`
	CreditsRequired  int    `form:"creditsRequired"`
}

// SpecialisationHandler serves the specialisations page and its related
// courses modal.
type SpecialisationHandler struct {
	*ListHandler[models.Specialisation]
}

// NewSpecialisationHandler builds the handler of the specialisations page.
func NewSpecialisationHandler(exports *service.ExportService, logger *zap.Logger) *SpecialisationHandler {
	return &SpecialisationHandler{ListHandler: newListHandler(listBinding[models.Specialisation]{
		page:     models.PageSpecialisations,
		template: web.TemplateSpecialisations,
		controller: func(shell *console.Shell) *listview.Controller[models.Specialisation] {
			return shell.Specialisations
		},
		bind:    bindSpecialisation,
		present: presentSpecialisations,
		export:  exports.Specialisations,
	}, logger)}
}

// OpenRelated opens the related courses modal of a specialisation. The
// modal opens even when the record is not in the loaded list.
func (h *SpecialisationHandler) OpenRelated(c *gin.Context) {
	shell, ok := requireShell(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	owner := models.Specialisation{SpecialisationID: id}
	for _, item := range shell.Specialisations.View().All {
		if item.SpecialisationID == id {
			owner = item
			break
		}
	}
	shell.Related.Open(c.Request.Context(), owner)
	h.back(c)
}

// CloseRelated closes the related courses modal.
func (h *SpecialisationHandler) CloseRelated(c *gin.Context) {
	shell, ok := requireShell(c)
	if !ok {
		return
	}
	shell.Related.Close()
	h.back(c)
}

func bindSpecialisation(c *gin.Context) (models.Specialisation, error) {
	var form specialisationForm
	if err := c.ShouldBind(&form); err != nil {
		return models.Specialisation{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "numeric fields must be whole numbers")
	}
	return models.Specialisation{
		SpecialisationID: form.SpecialisationID,
		Code:             form.Code,
		Name:             form.Name,
		Description:      form.Description,
		Year:             form.Year,
		CreditsRequired:  form.CreditsRequired,
	}, nil
}

func presentSpecialisations(shell *console.Shell, view listview.View[models.Specialisation], alert string) interface{} {
	layout := layoutFor(shell, "Specialisations")
	layout.Alert = alert
	return web.SpecialisationsPage{
		Layout:  layout,
		View:    view,
		Stats:   models.SummariseSpecialisations(view.All),
		Related: shell.Related.View(),
	}
}
