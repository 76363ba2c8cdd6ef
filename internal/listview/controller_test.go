package listview

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/models"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fakeResource struct {
	mu        sync.Mutex
	items     []models.Course
	listErr   error
	saveFail  string
	saveErr   error
	lists     int
	creates   []models.Course
	updates   map[int]models.Course
	deletes   []int
	deleteRes gateway.Result[models.MessageResponse]
	deleteErr error
	tokens    []string
	// when blocking, each List call parks on its own channel in pending.
	blocking bool
	pending  []chan []models.Course
}

func newFakeResource(items ...models.Course) *fakeResource {
	return &fakeResource{
		items:     items,
		updates:   map[int]models.Course{},
		deleteRes: gateway.Success(models.MessageResponse{Message: "Deleted"}),
	}
}

func (f *fakeResource) List(ctx context.Context, token string) ([]models.Course, error) {
	f.mu.Lock()
	f.lists++
	f.tokens = append(f.tokens, token)
	items, err := append([]models.Course(nil), f.items...), f.listErr
	var gate chan []models.Course
	if f.blocking {
		gate = make(chan []models.Course, 1)
		f.pending = append(f.pending, gate)
	}
	f.mu.Unlock()
	if gate != nil {
		return <-gate, nil
	}
	return items, err
}

func (f *fakeResource) Create(ctx context.Context, token string, record models.Course) (gateway.Result[models.Course], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, record)
	if f.saveErr != nil {
		return gateway.Result[models.Course]{}, f.saveErr
	}
	if f.saveFail != "" {
		return gateway.Failure[models.Course](f.saveFail), nil
	}
	return gateway.Success(record), nil
}

func (f *fakeResource) Update(ctx context.Context, token string, id int, record models.Course) (gateway.Result[models.Course], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = record
	if f.saveFail != "" {
		return gateway.Failure[models.Course](f.saveFail), nil
	}
	return gateway.Success(record), nil
}

func (f *fakeResource) Delete(ctx context.Context, token string, id int) (gateway.Result[models.MessageResponse], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteRes, f.deleteErr
}

func (f *fakeResource) release(call int, items []models.Course) {
	f.mu.Lock()
	gate := f.pending[call]
	f.mu.Unlock()
	gate <- items
}

func (f *fakeResource) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type loadRecorder struct {
	states []string
}

func (l *loadRecorder) ObserveListLoad(_ string, state string) {
	l.states = append(l.states, state)
}

func courseDescriptor() Descriptor[models.Course] {
	return Descriptor[models.Course]{
		Name: "course",
		ID:   func(c models.Course) int { return c.CourseID },
		SearchFields: func(c models.Course) []string {
			return []string{c.CourseCode, c.Name, c.Description, c.Faculty, c.Term, strconv.Itoa(c.Year)}
		},
		Defaults: models.NewCourseDraft,
	}
}

func validCourse(id int, code, name string) models.Course {
	c := models.NewCourseDraft()
	c.CourseID = id
	c.CourseCode = code
	c.Name = name
	c.Description = name + " description"
	return c
}

func newCourseController(res *fakeResource) *Controller[models.Course] {
	return NewController(courseDescriptor(), Resource[models.Course](res), staticToken("abc"), nil, nil)
}

func TestMountLoadsOnce(t *testing.T) {
	res := newFakeResource(validCourse(1, "CS101", "Intro"))
	c := newCourseController(res)
	assert.Equal(t, StateIdle, c.View().State)

	c.Mount(context.Background())
	c.Mount(context.Background())

	v := c.View()
	assert.Equal(t, StateLoaded, v.State)
	assert.Len(t, v.Items, 1)
	assert.Equal(t, 1, res.listCount())
	assert.Equal(t, []string{"abc"}, res.tokens)
}

func TestReloadEmptyAndError(t *testing.T) {
	res := newFakeResource()
	rec := &loadRecorder{}
	c := NewController(courseDescriptor(), Resource[models.Course](res), staticToken("abc"), nil, nil, WithLoadObserver[models.Course](rec))

	c.Reload(context.Background())
	assert.Equal(t, StateEmpty, c.View().State)

	res.items = []models.Course{validCourse(1, "CS101", "Intro")}
	c.Reload(context.Background())
	assert.Equal(t, StateLoaded, c.View().State)

	res.listErr = appErrors.ErrTransport
	c.Reload(context.Background())
	v := c.View()
	assert.Equal(t, StateErrorLoaded, v.State)
	assert.Empty(t, v.Items)
	assert.Empty(t, v.All)

	assert.Equal(t, []string{"empty", "loaded", "error_loaded"}, rec.states)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	res := newFakeResource()
	res.blocking = true
	c := newCourseController(res)

	first := make(chan struct{})
	go func() {
		c.Reload(context.Background())
		close(first)
	}()
	require.Eventually(t, func() bool { return res.listCount() == 1 }, timeout, tick)

	second := make(chan struct{})
	go func() {
		c.Reload(context.Background())
		close(second)
	}()
	require.Eventually(t, func() bool { return res.listCount() == 2 }, timeout, tick)
	assert.True(t, c.View().Loading())

	// newer answers first, then the older one arrives late
	res.release(1, []models.Course{validCourse(2, "NEW", "New")})
	<-second
	res.release(0, []models.Course{validCourse(1, "OLD", "Old")})
	<-first

	v := c.View()
	assert.Equal(t, StateLoaded, v.State)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "NEW", v.Items[0].CourseCode)
}

func TestResetMakesInFlightLoadStale(t *testing.T) {
	res := newFakeResource()
	res.blocking = true
	c := newCourseController(res)

	done := make(chan struct{})
	go func() {
		c.Reload(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return res.listCount() == 1 }, timeout, tick)

	c.Reset()
	res.release(0, []models.Course{validCourse(1, "CS101", "Intro")})
	<-done

	v := c.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Items)
}

func TestSearchFiltersWithoutMutatingCollection(t *testing.T) {
	res := newFakeResource(
		validCourse(1, "CS101", "Intro to Programming"),
		validCourse(2, "MA201", "Calculus"),
	)
	c := newCourseController(res)
	c.Mount(context.Background())

	c.Search("calc")
	v := c.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, "MA201", v.Items[0].CourseCode)
	assert.Len(t, v.All, 2)
	assert.Equal(t, "calc", v.Query)

	c.Search("")
	assert.Len(t, c.View().Items, 2)
}

func TestOpenCreateSeedsDefaults(t *testing.T) {
	c := newCourseController(newFakeResource())
	c.OpenCreate()

	form := c.View().Form
	assert.True(t, form.Open)
	assert.False(t, form.Editing)
	assert.Equal(t, models.NewCourseDraft(), form.Draft)
}

func TestOpenEditCopiesRecord(t *testing.T) {
	course := validCourse(4, "CS101", "Intro")
	c := newCourseController(newFakeResource(course))
	c.Mount(context.Background())

	require.NoError(t, c.OpenEdit(4))
	form := c.View().Form
	assert.True(t, form.Editing)
	assert.Equal(t, course, form.Draft)

	draft := form.Draft
	draft.Name = "Changed"
	c.UpdateDraft(draft)
	assert.Equal(t, "Intro", c.View().All[0].Name)

	err := c.OpenEdit(99)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmitCreateReloadsOnce(t *testing.T) {
	res := newFakeResource()
	c := newCourseController(res)
	c.Mount(context.Background())

	c.OpenCreate()
	c.UpdateDraft(validCourse(0, "CS101", "Intro"))
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, res.creates, 1)
	assert.Equal(t, 0, res.creates[0].CourseID)
	assert.Empty(t, res.updates)
	assert.Equal(t, 2, res.listCount())

	form := c.View().Form
	assert.False(t, form.Open)
	assert.Equal(t, models.NewCourseDraft(), form.Draft)
}

func TestSubmitUsesEditFlagNotID(t *testing.T) {
	course := validCourse(0, "CS000", "Zero")
	res := newFakeResource(course)
	c := newCourseController(res)
	c.Mount(context.Background())

	require.NoError(t, c.OpenEdit(0))
	require.NoError(t, c.Submit(context.Background()))

	assert.Empty(t, res.creates)
	assert.Contains(t, res.updates, 0)
}

func TestSubmitValidationKeepsFormOpen(t *testing.T) {
	res := newFakeResource()
	c := newCourseController(res)
	c.OpenCreate()

	err := c.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	form := c.View().Form
	assert.True(t, form.Open)
	assert.Contains(t, form.Error, "CourseCode is required")
	assert.Empty(t, res.creates)
	assert.Equal(t, 0, res.listCount())
}

func TestSubmitBackendFailureShowsMessage(t *testing.T) {
	res := newFakeResource()
	res.saveFail = "Course code already exists"
	c := newCourseController(res)
	c.OpenCreate()
	c.UpdateDraft(validCourse(0, "CS101", "Intro"))

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrBackend)

	form := c.View().Form
	assert.True(t, form.Open)
	assert.Equal(t, "Course code already exists", form.Error)
	assert.Equal(t, 0, res.listCount())
}

func TestSubmitTransportFailureShowsMessage(t *testing.T) {
	res := newFakeResource()
	res.saveErr = appErrors.Wrap(errors.New("dial tcp"), appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	c := newCourseController(res)
	c.OpenCreate()
	c.UpdateDraft(validCourse(0, "CS101", "Intro"))

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.Equal(t, "backend unreachable", c.View().Form.Error)
}

func TestSubmitClosedFormReopensWithDraft(t *testing.T) {
	res := newFakeResource()
	c := newCourseController(res)
	c.UpdateDraft(validCourse(0, "CS101", "Intro"))

	assert.ErrorIs(t, c.Submit(context.Background()), appErrors.ErrValidation)

	form := c.View().Form
	assert.True(t, form.Open)
	assert.False(t, form.Editing)
	assert.Equal(t, "CS101", form.Draft.CourseCode)
	assert.Equal(t, FormExpiredMessage, form.Error)
	assert.Empty(t, res.creates)
}

func TestResumeFormOnlyWhenClosed(t *testing.T) {
	c := newCourseController(newFakeResource(validCourse(4, "CS101", "Intro")))
	c.Mount(context.Background())

	require.True(t, c.ResumeForm(validCourse(4, "CS101", "Renamed"), true))
	form := c.View().Form
	assert.True(t, form.Editing)
	assert.Equal(t, "Renamed", form.Draft.Name)
	assert.Equal(t, FormExpiredMessage, form.Error)

	assert.False(t, c.ResumeForm(validCourse(0, "X", "Other"), false))
	assert.Equal(t, "Renamed", c.View().Form.Draft.Name)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	res := newFakeResource(validCourse(3, "CS101", "Intro"))
	c := newCourseController(res)
	c.Mount(context.Background())

	err := c.Delete(context.Background(), 3, false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	assert.Empty(t, res.deletes)
	assert.Equal(t, 1, res.listCount())
}

func TestConfirmDeleteFlow(t *testing.T) {
	res := newFakeResource(validCourse(3, "CS101", "Intro"))
	c := newCourseController(res)
	c.Mount(context.Background())

	require.NoError(t, c.RequestDelete(3))
	pending := c.View().PendingDelete
	require.NotNil(t, pending)
	assert.Equal(t, "CS101", pending.CourseCode)

	c.CancelDelete()
	assert.Nil(t, c.View().PendingDelete)
	assert.ErrorIs(t, c.ConfirmDelete(context.Background()), appErrors.ErrConfirmationRequired)
	assert.Empty(t, res.deletes)

	require.NoError(t, c.RequestDelete(3))
	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Equal(t, []int{3}, res.deletes)
	assert.Equal(t, 2, res.listCount())
	assert.Nil(t, c.View().PendingDelete)
}

func TestDeleteReloadsEvenOnFailure(t *testing.T) {
	res := newFakeResource(validCourse(3, "CS101", "Intro"))
	res.deleteRes = gateway.Failure[models.MessageResponse]("Only admins can delete courses")
	c := newCourseController(res)
	c.Mount(context.Background())

	err := c.Delete(context.Background(), 3, true)
	assert.ErrorIs(t, err, appErrors.ErrBackend)
	assert.EqualError(t, err, "Only admins can delete courses")
	assert.Equal(t, 2, res.listCount())

	res.deleteErr = appErrors.ErrTransport
	err = c.Delete(context.Background(), 3, true)
	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.Equal(t, 3, res.listCount())
}

func TestRequestDeleteUnknownID(t *testing.T) {
	c := newCourseController(newFakeResource())
	assert.ErrorIs(t, c.RequestDelete(1), appErrors.ErrNotFound)
}

func TestResetClearsEverything(t *testing.T) {
	res := newFakeResource(validCourse(1, "CS101", "Intro"))
	c := newCourseController(res)
	c.Mount(context.Background())
	c.Search("cs")
	require.NoError(t, c.OpenEdit(1))
	require.NoError(t, c.RequestDelete(1))

	c.Reset()
	v := c.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Items)
	assert.Empty(t, v.Query)
	assert.False(t, v.Form.Open)
	assert.Nil(t, v.PendingDelete)

	c.Mount(context.Background())
	assert.Equal(t, 2, res.listCount())
}

func TestMissingTokenStillCallsResource(t *testing.T) {
	res := newFakeResource()
	c := NewController(courseDescriptor(), Resource[models.Course](res), nil, nil, nil)
	c.Reload(context.Background())
	assert.Equal(t, []string{""}, res.tokens)
}
