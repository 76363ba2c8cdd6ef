package console

import (
	"context"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/models"
)

// Backend is the subset of the gateway a workspace needs. *gateway.Client
// implements it.
type Backend interface {
	GoogleLogin(ctx context.Context, credential string) (gateway.Result[models.AuthResponse], error)
	Logout(ctx context.Context, token string) (gateway.Result[models.MessageResponse], error)

	ListCourses(ctx context.Context, token string) ([]models.Course, error)
	CreateCourse(ctx context.Context, token string, course models.Course) (gateway.Result[models.Course], error)
	UpdateCourse(ctx context.Context, token string, id int, course models.Course) (gateway.Result[models.Course], error)
	DeleteCourse(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error)

	ListSpecialisations(ctx context.Context, token string) ([]models.Specialisation, error)
	CreateSpecialisation(ctx context.Context, token string, item models.Specialisation) (gateway.Result[models.Specialisation], error)
	UpdateSpecialisation(ctx context.Context, token string, id int, item models.Specialisation) (gateway.Result[models.Specialisation], error)
	DeleteSpecialisation(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error)
	SpecialisationCourses(ctx context.Context, token string, id int) ([]models.Course, error)
}

var _ Backend = (*gateway.Client)(nil)
