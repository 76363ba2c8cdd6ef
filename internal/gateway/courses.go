package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/academic-console/internal/models"
)

// ListCourses returns every course.
func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	return doList[models.Course](ctx, c, call{
		operation: "list_courses",
		method:    http.MethodGet,
		path:      "/api/courses",
		token:     token,
	})
}

// CreateCourse posts a new course. The id is sent as supplied, including 0.
func (c *Client) CreateCourse(ctx context.Context, token string, course models.Course) (Result[models.Course], error) {
	return doResult[models.Course](ctx, c, call{
		operation: "create_course",
		method:    http.MethodPost,
		path:      "/api/courses",
		token:     token,
		body:      course,
	})
}

// UpdateCourse replaces the course identified by id.
func (c *Client) UpdateCourse(ctx context.Context, token string, id int, course models.Course) (Result[models.Course], error) {
	return doResult[models.Course](ctx, c, call{
		operation: "update_course",
		method:    http.MethodPut,
		path:      fmt.Sprintf("/api/courses/%d", id),
		token:     token,
		body:      course,
	})
}

// DeleteCourse removes the course identified by id.
func (c *Client) DeleteCourse(ctx context.Context, token string, id int) (Result[models.MessageResponse], error) {
	return doResult[models.MessageResponse](ctx, c, call{
		operation: "delete_course",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/api/courses/%d", id),
		token:     token,
	})
}
