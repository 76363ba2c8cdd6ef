package console

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/internal/session"
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

// ScreenLogin is shown whenever the workspace is unauthenticated.
const ScreenLogin = "login"

// Shell is the root state of one browser workspace: the session, the
// current page and the two list controllers.
type Shell struct {
	mu       sync.Mutex
	id       string
	session  *session.Store
	backend  Backend
	logger   *zap.Logger
	page     models.Page
	lastSeen time.Time
	now      func() time.Time

	Courses         *listview.Controller[models.Course]
	Specialisations *listview.Controller[models.Specialisation]
	Related         *listview.RelatedModal[models.Specialisation, models.Course]
}

// ShellDeps are the collaborators shared by every workspace.
type ShellDeps struct {
	Backend  Backend
	Validate *validator.Validate
	Logger   *zap.Logger
	Loads    listview.LoadObserver
}

// NewShell builds the workspace id around an opened session store.
func NewShell(id string, store *session.Store, deps ShellDeps) *Shell {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := deps.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger = logger.With(zap.String("workspace", id))

	var courseOpts []listview.Option[models.Course]
	var specOpts []listview.Option[models.Specialisation]
	if deps.Loads != nil {
		courseOpts = append(courseOpts, listview.WithLoadObserver[models.Course](deps.Loads))
		specOpts = append(specOpts, listview.WithLoadObserver[models.Specialisation](deps.Loads))
	}

	s := &Shell{
		id:      id,
		session: store,
		backend: deps.Backend,
		logger:  logger,
		page:    models.PageCourses,
		now:     time.Now,
	}
	s.lastSeen = s.now()
	s.Courses = listview.NewController(CourseDescriptor(), listview.Resource[models.Course](courseResource{deps.Backend}), store, validate, logger, courseOpts...)
	s.Specialisations = listview.NewController(SpecialisationDescriptor(), listview.Resource[models.Specialisation](specialisationResource{deps.Backend}), store, validate, logger, specOpts...)
	s.Related = listview.NewRelatedModal(relatedCourses(deps.Backend), store, logger)

	store.Subscribe(s.onSessionChange)
	return s
}

// ID returns the workspace id.
func (s *Shell) ID() string {
	return s.id
}

// Session returns the workspace's session store.
func (s *Shell) Session() *session.Store {
	return s.session
}

// Page returns the current page. It is kept in memory only.
func (s *Shell) Page() models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Screen returns ScreenLogin when unauthenticated, otherwise the page.
func (s *Shell) Screen() string {
	if !s.session.IsAuthenticated() {
		return ScreenLogin
	}
	return string(s.Page())
}

// Navigate switches to page. The page being left is unmounted so that a
// later visit reloads it.
func (s *Shell) Navigate(page models.Page) {
	s.mu.Lock()
	previous := s.page
	s.page = page
	s.mu.Unlock()

	if previous == page {
		return
	}
	s.unmount(previous)
}

// Mount loads the current page's collection when it is not loaded yet.
// Nothing is loaded while unauthenticated.
func (s *Shell) Mount(ctx context.Context) {
	if !s.session.IsAuthenticated() {
		return
	}
	switch s.Page() {
	case models.PageCourses:
		s.Courses.Mount(ctx)
	case models.PageSpecialisations:
		s.Specialisations.Mount(ctx)
	}
}

// Login exchanges a Google credential with the backend and, on success,
// records the returned token and role.
func (s *Shell) Login(ctx context.Context, credential string) error {
	if credential == "" {
		return appErrors.Clone(appErrors.ErrValidation, "missing Google credential")
	}
	res, err := s.backend.GoogleLogin(ctx, credential)
	if err != nil {
		s.logger.Warn("google login exchange failed", zap.Error(err))
		return err
	}
	auth, ok := res.Value()
	if !ok {
		msg, _ := res.Failure()
		s.logger.Info("google login rejected", zap.String("error", msg))
		return res.Err()
	}
	if auth.Token == "" {
		return appErrors.Clone(appErrors.ErrUnexpectedPayload, "backend returned no session token")
	}
	return s.session.Login(ctx, auth.Token, auth.Role)
}

// Logout ends the session. The shell resets through its subscription.
func (s *Shell) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

// Status returns the JSON view of the workspace.
func (s *Shell) Status() models.SessionStatus {
	snap := s.session.Snapshot()
	return models.SessionStatus{
		Authenticated: snap.Authenticated(),
		Role:          snap.Role,
		Page:          s.Page(),
		Screen:        s.Screen(),
	}
}

// Touch records activity at the current time.
func (s *Shell) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
}

// LastSeen returns the time of the last recorded activity.
func (s *Shell) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Shell) onSessionChange(sess models.Session) {
	if sess.Authenticated() {
		return
	}
	s.mu.Lock()
	s.page = models.PageCourses
	s.mu.Unlock()

	s.Courses.Reset()
	s.Specialisations.Reset()
	s.Related.Close()
}

func (s *Shell) unmount(page models.Page) {
	switch page {
	case models.PageCourses:
		s.Courses.Reset()
	case models.PageSpecialisations:
		s.Specialisations.Reset()
		s.Related.Close()
	}
}
