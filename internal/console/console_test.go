package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-console/internal/gateway"
	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/internal/session"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

type backendStub struct {
	mu sync.Mutex

	login      gateway.Result[models.AuthResponse]
	loginErr   error
	logouts    []string
	courses    []models.Course
	specs      []models.Specialisation
	related    []models.Course
	relatedErr error

	courseLists int
	specLists   int
	created     []models.Course
	relatedFor  []int
}

func (b *backendStub) GoogleLogin(context.Context, string) (gateway.Result[models.AuthResponse], error) {
	return b.login, b.loginErr
}

func (b *backendStub) Logout(_ context.Context, token string) (gateway.Result[models.MessageResponse], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts = append(b.logouts, token)
	return gateway.Success(models.MessageResponse{Message: "Logged out"}), nil
}

func (b *backendStub) ListCourses(context.Context, string) ([]models.Course, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.courseLists++
	return b.courses, nil
}

func (b *backendStub) CreateCourse(_ context.Context, _ string, c models.Course) (gateway.Result[models.Course], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, c)
	return gateway.Success(c), nil
}

func (b *backendStub) UpdateCourse(_ context.Context, _ string, _ int, c models.Course) (gateway.Result[models.Course], error) {
	return gateway.Success(c), nil
}

func (b *backendStub) DeleteCourse(context.Context, string, int) (gateway.Result[models.MessageResponse], error) {
	return gateway.Success(models.MessageResponse{Message: "Deleted"}), nil
}

func (b *backendStub) ListSpecialisations(context.Context, string) ([]models.Specialisation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.specLists++
	return b.specs, nil
}

func (b *backendStub) CreateSpecialisation(_ context.Context, _ string, s models.Specialisation) (gateway.Result[models.Specialisation], error) {
	return gateway.Success(s), nil
}

func (b *backendStub) UpdateSpecialisation(_ context.Context, _ string, _ int, s models.Specialisation) (gateway.Result[models.Specialisation], error) {
	return gateway.Success(s), nil
}

func (b *backendStub) DeleteSpecialisation(context.Context, string, int) (gateway.Result[models.MessageResponse], error) {
	return gateway.Success(models.MessageResponse{Message: "Deleted"}), nil
}

func (b *backendStub) SpecialisationCourses(_ context.Context, _ string, id int) ([]models.Course, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relatedFor = append(b.relatedFor, id)
	return b.related, b.relatedErr
}

func newTestShell(t *testing.T, backend *backendStub) (*Shell, *session.MemoryStorage) {
	t.Helper()
	storage := session.NewMemoryStorage()
	store, err := session.Open(context.Background(), storage, "ws-1", backend, nil)
	require.NoError(t, err)
	return NewShell("ws-1", store, ShellDeps{Backend: backend}), storage
}

func adminLogin() gateway.Result[models.AuthResponse] {
	return gateway.Success(models.AuthResponse{Token: "abc", Role: models.RoleAdmin, Email: "a@example.edu"})
}

func TestUnauthenticatedShowsLogin(t *testing.T) {
	backend := &backendStub{}
	shell, _ := newTestShell(t, backend)

	shell.Navigate(models.PageSpecialisations)
	assert.Equal(t, ScreenLogin, shell.Screen())

	shell.Mount(context.Background())
	assert.Zero(t, backend.courseLists)
	assert.Zero(t, backend.specLists)
}

func TestLoginThenCoursesWithAdminControls(t *testing.T) {
	backend := &backendStub{login: adminLogin(), courses: []models.Course{{CourseID: 1, CourseCode: "CS101"}}}
	shell, storage := newTestShell(t, backend)
	require.Equal(t, ScreenLogin, shell.Screen())

	require.NoError(t, shell.Login(context.Background(), "google-jwt"))
	assert.Equal(t, string(models.PageCourses), shell.Screen())
	assert.True(t, shell.Session().IsAdmin())

	shell.Mount(context.Background())
	assert.Equal(t, listview.StateLoaded, shell.Courses.View().State)

	entries, err := storage.Read(context.Background(), "ws-1", session.TokenKey, session.RoleKey)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{session.TokenKey: "abc", session.RoleKey: "admin"}, entries)
}

func TestNonAdminRole(t *testing.T) {
	backend := &backendStub{login: gateway.Success(models.AuthResponse{Token: "t", Role: "student"})}
	shell, _ := newTestShell(t, backend)

	require.NoError(t, shell.Login(context.Background(), "google-jwt"))
	assert.Equal(t, string(models.PageCourses), shell.Screen())
	assert.False(t, shell.Session().IsAdmin())
	assert.Equal(t, models.SessionStatus{Authenticated: true, Role: "student", Page: models.PageCourses, Screen: "courses"}, shell.Status())
}

func TestLoginFailures(t *testing.T) {
	backend := &backendStub{login: gateway.Failure[models.AuthResponse]("Invalid Google credential")}
	shell, _ := newTestShell(t, backend)

	err := shell.Login(context.Background(), "bad")
	assert.ErrorIs(t, err, appErrors.ErrBackend)
	assert.EqualError(t, err, "Invalid Google credential")
	assert.Equal(t, ScreenLogin, shell.Screen())

	backend.loginErr = appErrors.ErrTransport
	assert.ErrorIs(t, shell.Login(context.Background(), "x"), appErrors.ErrTransport)

	assert.ErrorIs(t, shell.Login(context.Background(), ""), appErrors.ErrValidation)

	backend.loginErr = nil
	backend.login = gateway.Success(models.AuthResponse{Role: "admin"})
	assert.ErrorIs(t, shell.Login(context.Background(), "x"), appErrors.ErrUnexpectedPayload)
	assert.False(t, shell.Session().IsAuthenticated())
}

func TestCreateCourseReloads(t *testing.T) {
	backend := &backendStub{login: adminLogin()}
	shell, _ := newTestShell(t, backend)
	require.NoError(t, shell.Login(context.Background(), "google-jwt"))
	shell.Mount(context.Background())
	require.Equal(t, 1, backend.courseLists)

	course := models.Course{
		CourseID: 0, CourseCode: "CS101", Name: "Intro", Description: "d",
		Year: 2, Term: "Fall", Faculty: "CS", Credits: 3, Capacity: 50,
	}
	shell.Courses.OpenCreate()
	shell.Courses.UpdateDraft(course)
	require.NoError(t, shell.Courses.Submit(context.Background()))

	assert.Equal(t, []models.Course{course}, backend.created)
	assert.False(t, shell.Courses.View().Form.Open)
	assert.Equal(t, 2, backend.courseLists)
}

func TestRelatedCoursesFailureOpensEmpty(t *testing.T) {
	backend := &backendStub{login: adminLogin(), relatedErr: errors.New("network down")}
	shell, _ := newTestShell(t, backend)
	require.NoError(t, shell.Login(context.Background(), "google-jwt"))

	shell.Related.Open(context.Background(), models.Specialisation{SpecialisationID: 4, Name: "AI"})
	v := shell.Related.View()
	assert.True(t, v.Open)
	assert.Empty(t, v.Items)
	assert.Equal(t, []int{4}, backend.relatedFor)
}

func TestNavigateUnmountsPageLeft(t *testing.T) {
	backend := &backendStub{login: adminLogin(), courses: []models.Course{{CourseID: 1}}}
	shell, _ := newTestShell(t, backend)
	require.NoError(t, shell.Login(context.Background(), "google-jwt"))

	shell.Mount(context.Background())
	shell.Navigate(models.PageSpecialisations)
	assert.Equal(t, listview.StateIdle, shell.Courses.View().State)
	shell.Mount(context.Background())
	assert.Equal(t, 1, backend.specLists)

	shell.Navigate(models.PageSpecialisations)
	shell.Mount(context.Background())
	assert.Equal(t, 1, backend.specLists)

	shell.Navigate(models.PageCourses)
	shell.Mount(context.Background())
	assert.Equal(t, 2, backend.courseLists)
}

func TestLogoutResetsWorkspace(t *testing.T) {
	backend := &backendStub{login: adminLogin(), specs: []models.Specialisation{{SpecialisationID: 1}}}
	shell, storage := newTestShell(t, backend)
	require.NoError(t, shell.Login(context.Background(), "google-jwt"))
	shell.Navigate(models.PageSpecialisations)
	shell.Mount(context.Background())
	shell.Specialisations.Search("ai")

	require.NoError(t, shell.Logout(context.Background()))

	assert.Equal(t, ScreenLogin, shell.Screen())
	assert.Equal(t, models.PageCourses, shell.Page())
	assert.Equal(t, listview.StateIdle, shell.Specialisations.View().State)
	assert.Empty(t, shell.Specialisations.View().Query)
	assert.Equal(t, []string{"abc"}, backend.logouts)

	entries, err := storage.Read(context.Background(), "ws-1", session.TokenKey, session.RoleKey)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCourseSearchFields(t *testing.T) {
	courses := []models.Course{
		{CourseID: 1, Name: "Intro", CourseCode: "CS101", Description: "basics", Faculty: "Computer Science", Term: "Fall"},
		{CourseID: 2, Name: "Calculus", CourseCode: "MA201", Description: "limits", Faculty: "Mathematics", Term: "Spring"},
	}
	fields := CourseDescriptor().SearchFields

	assert.Len(t, listview.Filter(courses, "computer", fields), 1)
	assert.Len(t, listview.Filter(courses, "LIMITS", fields), 1)
	assert.Empty(t, listview.Filter(courses, "spring", fields))

	specs := []models.Specialisation{{Name: "AI", Code: "SP-AI", Description: "machine learning"}}
	assert.Len(t, listview.Filter(specs, "learning", SpecialisationDescriptor().SearchFields), 1)
}

type gaugeStub struct{ last int }

func (g *gaugeStub) SetWorkspaces(n int) { g.last = n }

func TestRegistryRestoresAndSweeps(t *testing.T) {
	backend := &backendStub{}
	storage := session.NewMemoryStorage()
	require.NoError(t, storage.Write(context.Background(), "ws-9", map[string]string{
		session.TokenKey: "persisted",
		session.RoleKey:  "admin",
	}))

	gauge := &gaugeStub{}
	reg := NewRegistry(storage, ShellDeps{Backend: backend}, gauge)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }

	shell, err := reg.Get(context.Background(), "ws-9")
	require.NoError(t, err)
	assert.True(t, shell.Session().IsAdmin())
	assert.Equal(t, "persisted", shell.Session().Token())

	again, err := reg.Get(context.Background(), "ws-9")
	require.NoError(t, err)
	assert.Same(t, shell, again)

	_, err = reg.Get(context.Background(), "ws-10")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 2, gauge.last)

	clock = clock.Add(10 * time.Minute)
	_, err = reg.Get(context.Background(), "ws-10")
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Sweep(5*time.Minute))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, gauge.last)

	restored, err := reg.Get(context.Background(), "ws-9")
	require.NoError(t, err)
	assert.NotSame(t, shell, restored)
	assert.Equal(t, "persisted", restored.Session().Token())
}

type failingStorage struct{ session.Storage }

func (failingStorage) Read(context.Context, string, ...string) (map[string]string, error) {
	return nil, errors.New("disk gone")
}

func TestRegistryStorageFailure(t *testing.T) {
	reg := NewRegistry(failingStorage{}, ShellDeps{Backend: &backendStub{}}, nil)
	_, err := reg.Get(context.Background(), "ws-1")
	assert.ErrorIs(t, err, appErrors.ErrStorage)
	assert.Zero(t, reg.Len())
}

// gatedStorage parks reads of one namespace until release is closed.
type gatedStorage struct {
	*session.MemoryStorage
	namespace string
	entered   chan struct{}
	release   chan struct{}
}

func (g *gatedStorage) Read(ctx context.Context, namespace string, keys ...string) (map[string]string, error) {
	if namespace == g.namespace {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.MemoryStorage.Read(ctx, namespace, keys...)
}

func TestRegistryOpensOutsideLock(t *testing.T) {
	storage := &gatedStorage{
		MemoryStorage: session.NewMemoryStorage(),
		namespace:     "ws-slow",
		entered:       make(chan struct{}, 2),
		release:       make(chan struct{}),
	}
	reg := NewRegistry(storage, ShellDeps{Backend: &backendStub{}}, nil)

	results := make(chan *Shell, 2)
	for i := 0; i < 2; i++ {
		go func() {
			shell, err := reg.Get(context.Background(), "ws-slow")
			assert.NoError(t, err)
			results <- shell
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-storage.entered:
		case <-time.After(time.Second):
			t.Fatal("slow read not started")
		}
	}

	done := make(chan struct{})
	go func() {
		_, err := reg.Get(context.Background(), "ws-fast")
		assert.NoError(t, err)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workspace open blocked behind a pending storage read")
	}

	close(storage.release)
	first, second := <-results, <-results
	assert.Same(t, first, second)
	assert.Equal(t, 2, reg.Len())
}
