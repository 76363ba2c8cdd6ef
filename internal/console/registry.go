package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/session"
)

// WorkspaceGauge tracks the number of live workspaces.
type WorkspaceGauge interface {
	SetWorkspaces(n int)
}

// Registry keeps one Shell per console cookie id in memory. Sessions live
// in durable storage; an evicted workspace is rebuilt from it on next use.
type Registry struct {
	mu      sync.Mutex
	storage session.Storage
	deps    ShellDeps
	gauge   WorkspaceGauge
	logger  *zap.Logger
	shells  map[string]*Shell
	now     func() time.Time
}

// NewRegistry constructs an empty registry.
func NewRegistry(storage session.Storage, deps ShellDeps, gauge WorkspaceGauge) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		storage: storage,
		deps:    deps,
		gauge:   gauge,
		logger:  logger,
		shells:  make(map[string]*Shell),
		now:     time.Now,
	}
}

// Get returns the workspace id, restoring its session from storage on
// first use. Storage is read without holding the registry lock; when two
// requests race to open the same id the first one stored wins.
func (r *Registry) Get(ctx context.Context, id string) (*Shell, error) {
	if shell, ok := r.lookup(id); ok {
		return shell, nil
	}

	store, err := session.Open(ctx, r.storage, id, r.deps.Backend, r.deps.Logger)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if shell, ok := r.shells[id]; ok {
		shell.Touch()
		return shell, nil
	}
	shell := NewShell(id, store, r.deps)
	shell.now = r.now
	shell.Touch()
	r.shells[id] = shell
	r.report()
	r.logger.Debug("workspace opened", zap.String("workspace", id), zap.Bool("authenticated", store.IsAuthenticated()))
	return shell, nil
}

func (r *Registry) lookup(id string) (*Shell, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shell, ok := r.shells[id]
	if ok {
		shell.Touch()
	}
	return shell, ok
}

// Sweep evicts workspaces idle for longer than maxIdle and returns how many
// were evicted.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, shell := range r.shells {
		if shell.LastSeen().Before(cutoff) {
			delete(r.shells, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.report()
		r.logger.Info("evicted idle workspaces", zap.Int("count", evicted), zap.Int("remaining", len(r.shells)))
	}
	return evicted
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}

func (r *Registry) report() {
	if r.gauge != nil {
		r.gauge.SetWorkspaces(len(r.shells))
	}
}
