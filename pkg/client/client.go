// Package client defines the contract to the external messaging-protocol
// collaborator: login and event delivery, typed outgoing payloads, and
// account client management. The protocol, transport, and cryptography live
// behind this interface. A simulated in-process implementation ships with the
// harness; binding a real protocol stack means supplying another Factory.
package client

import (
	"context"
	"errors"

	"ets/pkg/models"
)

// ErrTooManyClients is returned by Login when the backend rejects client
// registration because the account already holds the maximum number of
// protocol clients. Bulk client removal tolerates it and proceeds.
var ErrTooManyClients = errors.New("too many clients registered for account")

// Credentials identifies the account an instance logs in as.
type Credentials struct {
	Email    string
	Password string
}

// Device describes the protocol client registered at login.
type Device struct {
	Name  string
	Label string
}

// SendResult reports the protocol-assigned id of a sent payload.
type SendResult struct {
	MessageID string
	// Time is the send timestamp in unix milliseconds.
	Time int64
}

// RegisteredClient is one protocol client registered on an account.
type RegisteredClient struct {
	ID    string `json:"id"`
	Model string `json:"model,omitempty"`
}

// Client is one logged-in messaging session. Calls into the backend block
// until the collaborator resolves; there is no timeout at this layer.
type Client interface {
	// Login authenticates against the backend and registers the device.
	Login(ctx context.Context) error
	// Listen begins event delivery to handler. Events for one client arrive
	// in emission order.
	Listen(handler EventHandler) error
	// Logout tears the session down.
	Logout(ctx context.Context) error

	// Send submits a payload to a conversation and returns the generated
	// message id.
	Send(ctx context.Context, conversationID string, p Payload) (SendResult, error)

	SetAvailability(ctx context.Context, status string) error
	SetArchived(ctx context.Context, conversationID string, archived bool) error
	SetMuted(ctx context.Context, conversationID string, muted bool) error
	SendTyping(ctx context.Context, conversationID string, typing bool) error
	ResetSession(ctx context.Context, conversationID string) error

	// UserID and ClientID identify the logged-in account and its registered
	// protocol client. Empty before a successful Login.
	UserID() string
	ClientID() string

	// RegisteredClients enumerates all protocol clients on the account.
	RegisteredClients(ctx context.Context) ([]RegisteredClient, error)
	// RemoveClient deletes one protocol client from the backend.
	RemoveClient(ctx context.Context, clientID string) error
}

// Factory constructs fresh clients against a fresh empty credential store.
type Factory interface {
	New(creds Credentials, backend models.Backend, device Device) Client
}

var _ Factory = (*SimFactory)(nil)
