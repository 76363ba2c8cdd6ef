package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/academic-console/internal/models"
)

// ListSpecialisations returns every specialisation.
func (c *Client) ListSpecialisations(ctx context.Context, token string) ([]models.Specialisation, error) {
	return doList[models.Specialisation](ctx, c, call{
		operation: "list_specialisations",
		method:    http.MethodGet,
		path:      "/api/specialisations",
		token:     token,
	})
}

// CreateSpecialisation posts a new specialisation.
func (c *Client) CreateSpecialisation(ctx context.Context, token string, item models.Specialisation) (Result[models.Specialisation], error) {
	return doResult[models.Specialisation](ctx, c, call{
		operation: "create_specialisation",
		method:    http.MethodPost,
		path:      "/api/specialisations",
		token:     token,
		body:      item,
	})
}

// UpdateSpecialisation replaces the specialisation identified by id.
func (c *Client) UpdateSpecialisation(ctx context.Context, token string, id int, item models.Specialisation) (Result[models.Specialisation], error) {
	return doResult[models.Specialisation](ctx, c, call{
		operation: "update_specialisation",
		method:    http.MethodPut,
		path:      fmt.Sprintf("/api/specialisations/%d", id),
		token:     token,
		body:      item,
	})
}

// DeleteSpecialisation removes the specialisation identified by id.
func (c *Client) DeleteSpecialisation(ctx context.Context, token string, id int) (Result[models.MessageResponse], error) {
	return doResult[models.MessageResponse](ctx, c, call{
		operation: "delete_specialisation",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/api/specialisations/%d", id),
		token:     token,
	})
}

// SpecialisationCourses returns the courses that belong to specialisation id.
func (c *Client) SpecialisationCourses(ctx context.Context, token string, id int) ([]models.Course, error) {
	return doList[models.Course](ctx, c, call{
		operation: "specialisation_courses",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/api/specialisations/%d/courses", id),
		token:     token,
	})
}
