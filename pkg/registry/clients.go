package registry

import (
	"context"
	"errors"
	"fmt"

	"ets/pkg/client"
	"ets/pkg/logger"
	"ets/pkg/metrics"
	"ets/pkg/models"
)

// RemoveAllClients is the administrative bulk cleanup: it logs in with a
// throwaway session, deletes every protocol client registered on the
// account from the backend, and removes any locally registered instance
// whose client id was among them. A "too many clients" rejection at login is
// expected here and tolerated; any other login failure aborts the whole
// operation. Returns the removed backend client ids.
func (r *Registry) RemoveAllClients(ctx context.Context, email, password, backendName string, custom *models.Backend) ([]string, error) {
	backend, err := models.ResolveBackend(backendName, custom)
	if err != nil {
		return nil, err
	}

	c := r.factory.New(
		client.Credentials{Email: email, Password: password},
		backend,
		client.Device{Name: "ets-admin"},
	)
	if err := c.Login(ctx); err != nil {
		if !errors.Is(err, client.ErrTooManyClients) {
			return nil, fmt.Errorf("%w: %s", ErrLoginFailed, err)
		}
		logger.Info("remove_all_clients_login_at_capacity", "email", email)
	}

	registered, err := c.RegisteredClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	// the admin session's own registration is released by the logout below,
	// not reported as a removal
	own := c.ClientID()

	removed := make([]string, 0, len(registered))
	for _, rc := range registered {
		if rc.ID == own {
			continue
		}
		if err := c.RemoveClient(ctx, rc.ID); err != nil {
			return removed, fmt.Errorf("remove client %s: %w", rc.ID, err)
		}
		removed = append(removed, rc.ID)
	}

	// drop local instances whose backend client just disappeared; their
	// sessions are dead either way
	for id, inst := range r.instances.All() {
		clientID := inst.Client.ClientID()
		for _, rid := range removed {
			if clientID != "" && clientID == rid {
				r.instances.Delete(id)
				logger.Info("instance_removed_with_client", "instance", id, "client", clientID)
				break
			}
		}
	}

	_ = c.Logout(ctx)
	metrics.InstancesLive.Set(float64(r.instances.Len()))
	logger.Info("remove_all_clients_done", "email", email, "removed", len(removed))
	return removed, nil
}
