// Package registry owns the lifecycle of messaging instances: create/login,
// lookup, delete/logout, and the global cap on simultaneously live
// instances. All conversation reads and writes go through here.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ets/pkg/cache"
	"ets/pkg/client"
	"ets/pkg/journal"
	"ets/pkg/logger"
	"ets/pkg/metrics"
	"ets/pkg/models"
	"ets/pkg/projector"
)

var (
	// ErrInstanceNotFound marks lookups of unknown (or already deleted)
	// instance ids.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrMessageNotFound marks ephemeral confirmation flows referencing a
	// target message the instance does not hold.
	ErrMessageNotFound = errors.New("message not found")
	// ErrLoginFailed wraps a backend login rejection during Create.
	ErrLoginFailed = errors.New("login failed")
)

// DefaultMaxInstances bounds live instances when no cap is configured.
const DefaultMaxInstances = 20

// evictLogoutTimeout bounds the best-effort logout of a silently evicted
// instance.
const evictLogoutTimeout = 10 * time.Second

// Instance is one simulated messaging session under test.
type Instance struct {
	ID       string
	Name     string
	Backend  models.Backend
	Client   client.Client
	Messages *cache.Cache[string, models.Message]
}

// Option mutates registry configuration.
type Option func(*Registry)

// WithMaxInstances caps simultaneously live instances.
func WithMaxInstances(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxInstances = n
		}
	}
}

// WithMessageCapacity sets the per-instance message cache capacity.
func WithMessageCapacity(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.messageCap = n
		}
	}
}

// WithJournal attaches the event journal; every projected event is recorded
// under its instance id.
func WithJournal(j *journal.Journal) Option {
	return func(r *Registry) {
		r.journal = j
	}
}

// Registry holds all live instances in a bounded LRU cache. When the cap is
// exceeded the oldest-used instance is evicted and logged out best-effort;
// eviction is policy, not an error.
type Registry struct {
	factory      client.Factory
	maxInstances int
	messageCap   int
	journal      *journal.Journal
	instances    *cache.Cache[string, *Instance]
}

// New creates a registry backed by the given client factory. The registry is
// constructed once per process and passed to whatever serves HTTP requests.
func New(factory client.Factory, options ...Option) *Registry {
	r := &Registry{
		factory:      factory,
		maxInstances: DefaultMaxInstances,
		messageCap:   cache.DefaultCapacity,
	}
	for _, option := range options {
		option(r)
	}
	r.instances = cache.New(r.maxInstances, cache.OnEvict(r.onEvicted))
	return r
}

// CreateRequest carries everything needed to log a new instance in.
type CreateRequest struct {
	Email         string
	Password      string
	Backend       string
	CustomBackend *models.Backend
	DeviceName    string
	Name          string
}

// Create resolves the backend, logs a fresh client in, wires its events into
// a projector over a new empty message cache, and registers the instance
// under a freshly generated id. A rejected login leaves nothing registered.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (string, error) {
	backend, err := models.ResolveBackend(req.Backend, req.CustomBackend)
	if err != nil {
		return "", err
	}

	c := r.factory.New(
		client.Credentials{Email: req.Email, Password: req.Password},
		backend,
		client.Device{Name: req.DeviceName},
	)
	if err := c.Login(ctx); err != nil {
		return "", fmt.Errorf("%w: %s", ErrLoginFailed, err)
	}

	id := uuid.NewString()
	messages := cache.New[string, models.Message](r.messageCap)
	proj := projector.New(messages, projector.WithObserver(func(ev client.Event) {
		if err := r.journal.Append(id, ev); err != nil {
			logger.Warn("journal_append_failed", "instance", id, "error", err)
		}
	}))
	if err := c.Listen(proj.Handler()); err != nil {
		_ = c.Logout(ctx)
		return "", fmt.Errorf("start listening: %w", err)
	}

	inst := &Instance{
		ID:       id,
		Name:     req.Name,
		Backend:  backend,
		Client:   c,
		Messages: messages,
	}
	r.instances.Set(id, inst)
	metrics.InstancesCreated.Inc()
	metrics.InstancesLive.Set(float64(r.instances.Len()))
	logger.Info("instance_created", "instance", id, "backend", backend.Name, "name", req.Name)
	return id, nil
}

// Get returns a registered instance or ErrInstanceNotFound.
func (r *Registry) Get(instanceID string) (*Instance, error) {
	inst, ok := r.instances.Get(instanceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	return inst, nil
}

// Exists reports whether the id is currently registered. Never errors.
func (r *Registry) Exists(instanceID string) bool {
	_, ok := r.instances.Get(instanceID)
	return ok
}

// Instances returns all currently registered instances keyed by id.
func (r *Registry) Instances() map[string]*Instance {
	return r.instances.All()
}

// Delete logs the instance out, then removes it. A logout rejection
// propagates and leaves the instance registered.
func (r *Registry) Delete(ctx context.Context, instanceID string) error {
	inst, err := r.Get(instanceID)
	if err != nil {
		return err
	}
	if err := inst.Client.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	r.instances.Delete(instanceID)
	metrics.InstancesDeleted.Inc()
	metrics.InstancesLive.Set(float64(r.instances.Len()))
	logger.Info("instance_deleted", "instance", instanceID)
	return nil
}

// GetMessages returns the instance's cached messages for one conversation,
// ordered by timestamp then id so the result is stable for a given cache
// state.
func (r *Registry) GetMessages(instanceID, conversationID string) ([]models.Message, error) {
	inst, err := r.Get(instanceID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0)
	for _, msg := range inst.Messages.All() {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Journal returns the journaled events for an instance. The instance must
// currently exist; journal entries for evicted instances are reachable only
// on disk.
func (r *Registry) Journal(instanceID string) ([]journal.Entry, error) {
	if _, err := r.Get(instanceID); err != nil {
		return nil, err
	}
	return r.journal.List(instanceID)
}

// ExpireMessages removes every cached ephemeral message whose expiry is at
// or before now, across all instances. Returns the number removed.
func (r *Registry) ExpireMessages(now time.Time) int {
	nowMs := now.UnixMilli()
	removed := 0
	for _, inst := range r.instances.All() {
		for id, msg := range inst.Messages.All() {
			if msg.ExpiresAt > 0 && msg.ExpiresAt <= nowMs {
				inst.Messages.Delete(id)
				removed++
			}
		}
	}
	if removed > 0 {
		metrics.ReaperRemoved.Add(float64(removed))
	}
	return removed
}

func (r *Registry) onEvicted(id string, inst *Instance) {
	metrics.InstancesEvicted.Inc()
	metrics.InstancesLive.Set(float64(r.instances.Len()))
	logger.Warn("instance_evicted", "instance", id, "name", inst.Name)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), evictLogoutTimeout)
		defer cancel()
		if err := inst.Client.Logout(ctx); err != nil {
			logger.Warn("evicted_instance_logout_failed", "instance", id, "error", err)
		}
	}()
}
