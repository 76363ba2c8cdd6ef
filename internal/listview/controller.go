package listview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/models"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

// State is the load state of a controller.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateLoaded      State = "loaded"
	StateEmpty       State = "empty"
	StateErrorLoaded State = "error_loaded"
)

// Resource is the backend binding of one entity type.
type Resource[T any] interface {
	List(ctx context.Context, token string) ([]T, error)
	Create(ctx context.Context, token string, record T) (gateway.Result[T], error)
	Update(ctx context.Context, token string, id int, record T) (gateway.Result[T], error)
	Delete(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error)
}

// TokenSource supplies the current session token.
type TokenSource interface {
	Token() string
}

// Descriptor describes an entity type to the controller.
type Descriptor[T any] struct {
	// Name is the singular entity name used in logs and messages.
	Name         string
	ID           func(T) int
	SearchFields func(T) []string
	Defaults     func() T
}

// LoadObserver records the outcome of every applied load.
type LoadObserver interface {
	ObserveListLoad(entity string, state string)
}

// Form is the create/edit modal state.
type Form[T any] struct {
	Open    bool
	Editing bool
	Draft   T
	Error   string
}

// View is an immutable snapshot for rendering.
type View[T any] struct {
	State         State
	Items         []T
	All           []T
	Query         string
	Form          Form[T]
	PendingDelete *T
}

// Loading reports whether a load is in flight.
func (v View[T]) Loading() bool {
	return v.State == StateLoading
}

// FormExpiredMessage is shown when a submission arrives for a form that is no
// longer open, for example after the workspace was evicted.
const FormExpiredMessage = "the form expired; review the values and submit again"

// Controller owns the loaded collection, search query and form of one
// entity type for one workspace. It is safe for concurrent use; the lock is
// never held across a backend call.
type Controller[T any] struct {
	mu            sync.Mutex
	desc          Descriptor[T]
	resource      Resource[T]
	tokens        TokenSource
	validate      *validator.Validate
	logger        *zap.Logger
	observer      LoadObserver
	state         State
	items         []T
	query         string
	generation    uint64
	form          Form[T]
	pendingDelete *int
}

// Option customises a controller.
type Option[T any] func(*Controller[T])

// WithLoadObserver reports applied loads to observer.
func WithLoadObserver[T any](observer LoadObserver) Option[T] {
	return func(c *Controller[T]) { c.observer = observer }
}

// NewController constructs an idle controller.
func NewController[T any](desc Descriptor[T], resource Resource[T], tokens TokenSource, validate *validator.Validate, logger *zap.Logger, opts ...Option[T]) *Controller[T] {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller[T]{
		desc:     desc,
		resource: resource,
		tokens:   tokens,
		validate: validate,
		logger:   logger.With(zap.String("entity", desc.Name)),
		state:    StateIdle,
	}
	c.form.Draft = desc.Defaults()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount performs the initial load when the controller is idle.
func (c *Controller[T]) Mount(ctx context.Context) {
	c.mu.Lock()
	idle := c.state == StateIdle
	c.mu.Unlock()
	if idle {
		c.Reload(ctx)
	}
}

// Reload fetches the full collection. Failures degrade to an empty
// collection in StateErrorLoaded. A response that is not the latest issued
// load is discarded.
func (c *Controller[T]) Reload(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = StateLoading
	c.mu.Unlock()

	items, err := c.resource.List(ctx, c.token())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale load", zap.Uint64("generation", gen), zap.Uint64("latest", c.generation))
		return
	}

	switch {
	case err != nil:
		c.logger.Warn("list load failed", zap.Error(err))
		c.items = nil
		c.state = StateErrorLoaded
	case len(items) == 0:
		c.items = nil
		c.state = StateEmpty
	default:
		c.items = items
		c.state = StateLoaded
	}
	if c.observer != nil {
		c.observer.ObserveListLoad(c.desc.Name, string(c.state))
	}
}

// Search sets the free-text query. Filtering happens on View.
func (c *Controller[T]) Search(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
}

// View returns a snapshot of the controller with the filtered items.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]T, len(c.items))
	copy(all, c.items)
	v := View[T]{
		State: c.state,
		All:   all,
		Items: Filter(c.items, c.query, c.desc.SearchFields),
		Query: c.query,
		Form:  c.form,
	}
	if c.pendingDelete != nil {
		if record, ok := c.findLocked(*c.pendingDelete); ok {
			v.PendingDelete = &record
		}
	}
	return v
}

// OpenCreate opens the form seeded with defaults.
func (c *Controller[T]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = Form[T]{Open: true, Draft: c.desc.Defaults()}
}

// OpenEdit opens the form seeded with a copy of the loaded record id.
func (c *Controller[T]) OpenEdit(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.findLocked(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d is not loaded", c.desc.Name, id))
	}
	c.form = Form[T]{Open: true, Editing: true, Draft: record}
	return nil
}

// UpdateDraft replaces the draft of an open form.
func (c *Controller[T]) UpdateDraft(draft T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Draft = draft
}

// CloseForm dismisses the form without submitting. The draft is kept so a
// reopened create form starts from defaults only via OpenCreate.
func (c *Controller[T]) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Open = false
	c.form.Error = ""
}

// Submit validates the draft and creates or updates it depending on the
// edit flag. On success the form closes, the draft resets and the
// collection reloads once. On any failure the form stays open with the
// message in Form.Error and the error is returned.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.form.Open {
		c.form = Form[T]{Open: true, Draft: c.form.Draft, Error: FormExpiredMessage}
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, FormExpiredMessage)
	}
	draft, editing := c.form.Draft, c.form.Editing
	c.mu.Unlock()

	if err := c.validate.Struct(draft); err != nil {
		return c.failForm(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err)))
	}

	token := c.token()
	var (
		res gateway.Result[T]
		err error
	)
	if editing {
		res, err = c.resource.Update(ctx, token, c.desc.ID(draft), draft)
	} else {
		res, err = c.resource.Create(ctx, token, draft)
	}
	if err != nil {
		c.logger.Warn("save failed", zap.Bool("editing", editing), zap.Error(err))
		return c.failForm(err)
	}
	if msg, failed := res.Failure(); failed {
		c.logger.Info("save rejected by backend", zap.Bool("editing", editing), zap.String("error", msg))
		return c.failForm(res.Err())
	}

	c.mu.Lock()
	c.form = Form[T]{Draft: c.desc.Defaults()}
	c.mu.Unlock()

	c.Reload(ctx)
	return nil
}

// ResumeForm reopens a closed form with draft and the given edit flag,
// marking it expired so nothing is saved until the user submits again. It
// reports whether the form had to be reopened.
func (c *Controller[T]) ResumeForm(draft T, editing bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Open {
		return false
	}
	c.form = Form[T]{Open: true, Editing: editing, Draft: draft, Error: FormExpiredMessage}
	c.logger.Info("resumed expired form", zap.Bool("editing", editing))
	return true
}

func (c *Controller[T]) failForm(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Error = appErrors.Message(err, fmt.Sprintf("failed to save %s", c.desc.Name))
	return err
}

// RequestDelete arms the confirmation for record id.
func (c *Controller[T]) RequestDelete(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.findLocked(id); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d is not loaded", c.desc.Name, id))
	}
	c.pendingDelete = &id
	return nil
}

// CancelDelete disarms a pending confirmation.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete deletes the record armed by RequestDelete.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	c.pendingDelete = nil
	c.mu.Unlock()

	if pending == nil {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "no deletion awaiting confirmation")
	}
	return c.Delete(ctx, *pending, true)
}

// Delete removes record id when confirmed. Without confirmation the
// backend is never called. After a confirmed call the collection always
// reloads, whatever the outcome.
func (c *Controller[T]) Delete(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, fmt.Sprintf("deleting %s %d requires confirmation", c.desc.Name, id))
	}

	res, err := c.resource.Delete(ctx, c.token(), id)
	switch {
	case err != nil:
		c.logger.Warn("delete failed", zap.Int("id", id), zap.Error(err))
	case !res.Ok():
		msg, _ := res.Failure()
		c.logger.Info("delete rejected by backend", zap.Int("id", id), zap.String("error", msg))
		err = res.Err()
	}

	c.Reload(ctx)
	return err
}

// Reset returns the controller to its idle, empty state. In-flight loads
// become stale.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateIdle
	c.items = nil
	c.query = ""
	c.form = Form[T]{Draft: c.desc.Defaults()}
	c.pendingDelete = nil
}

func (c *Controller[T]) findLocked(id int) (T, bool) {
	for _, item := range c.items {
		if c.desc.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid form"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
