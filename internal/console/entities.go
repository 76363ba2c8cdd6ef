package console

import (
	"context"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
)

// CourseDescriptor describes courses to a list controller.
func CourseDescriptor() listview.Descriptor[models.Course] {
	return listview.Descriptor[models.Course]{
		Name: "course",
		ID:   func(c models.Course) int { return c.CourseID },
		SearchFields: func(c models.Course) []string {
			return []string{c.Name, c.CourseCode, c.Description, c.Faculty}
		},
		Defaults: models.NewCourseDraft,
	}
}

// SpecialisationDescriptor describes specialisations to a list controller.
func SpecialisationDescriptor() listview.Descriptor[models.Specialisation] {
	return listview.Descriptor[models.Specialisation]{
		Name: "specialisation",
		ID:   func(s models.Specialisation) int { return s.SpecialisationID },
		SearchFields: func(s models.Specialisation) []string {
			return []string{s.Name, s.Code, s.Description}
		},
		Defaults: models.NewSpecialisationDraft,
	}
}

type courseResource struct{ backend Backend }

func (r courseResource) List(ctx context.Context, token string) ([]models.Course, error) {
	return r.backend.ListCourses(ctx, token)
}

func (r courseResource) Create(ctx context.Context, token string, c models.Course) (gateway.Result[models.Course], error) {
	return r.backend.CreateCourse(ctx, token, c)
}

func (r courseResource) Update(ctx context.Context, token string, id int, c models.Course) (gateway.Result[models.Course], error) {
	return r.backend.UpdateCourse(ctx, token, id, c)
}

func (r courseResource) Delete(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error) {
	return r.backend.DeleteCourse(ctx, token, id)
}

type specialisationResource struct{ backend Backend }

func (r specialisationResource) List(ctx context.Context, token string) ([]models.Specialisation, error) {
	return r.backend.ListSpecialisations(ctx, token)
}

func (r specialisationResource) Create(ctx context.Context, token string, s models.Specialisation) (gateway.Result[models.Specialisation], error) {
	return r.backend.CreateSpecialisation(ctx, token, s)
}

func (r specialisationResource) Update(ctx context.Context, token string, id int, s models.Specialisation) (gateway.Result[models.Specialisation], error) {
	return r.backend.UpdateSpecialisation(ctx, token, id, s)
}

func (r specialisationResource) Delete(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error) {
	return r.backend.DeleteSpecialisation(ctx, token, id)
}

func relatedCourses(backend Backend) listview.RelatedFetcher[models.Specialisation, models.Course] {
	return func(ctx context.Context, token string, owner models.Specialisation) ([]models.Course, error) {
		return backend.SpecialisationCourses(ctx, token, owner.SpecialisationID)
	}
}
