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
)

type courseForm struct {
	CourseID    int    `form:"courseId"`
	CourseCode  string `form:"courseCode"`
	Name        string `form:"name"`
	Description string `form:"description"`
	Year        int    `form:"year"`
	Term        string `form:"term"`
	Faculty     string `form:"faculty"`
	Credits     int    `form:"credits"`
	Capacity    int    `form:"capacity"`
}

// NewCourseHandler builds the list handler of the courses page.
func NewCourseHandler(exports *service.ExportService, logger *zap.Logger) *ListHandler[models.Course] {
	return newListHandler(listBinding[models.Course]{
		page:     models.PageCourses,
		template: web.TemplateCourses,
		controller: func(shell *console.Shell) *listview.Controller[models.Course] {
			return shell.Courses
		},
		bind:    bindCourse,
		present: presentCourses,
		export:  exports.Courses,
	}, logger)
}

func bindCourse(c *gin.Context) (models.Course, error) {
	var form courseForm
	if err := c.ShouldBind(&form); err != nil {
		return models.Course{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "numeric fields must be whole numbers")
	}
	return models.Course{
		CourseID:    form.CourseID,
		CourseCode:  form.CourseCode,
		Name:        form.Name,
		Description: form.Description,
		Year:        form.Year,
		Term:        form.Term,
		Faculty:     form.Faculty,
		Credits:     form.Credits,
		Capacity:    form.Capacity,
	}, nil
}

func presentCourses(shell *console.Shell, view listview.View[models.Course], alert string) interface{} {
	layout := layoutFor(shell, "Courses")
	layout.Alert = alert
	return web.CoursesPage{
		Layout: layout,
		View:   view,
		Stats:  models.SummariseCourses(view.All),
		Terms:  []string{models.TermFall, models.TermSpring},
	}
}
