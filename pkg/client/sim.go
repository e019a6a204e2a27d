package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ets/pkg/models"
)

// defaultMaxClients mirrors the backend cap on permanent protocol clients
// per account.
const defaultMaxClients = 7

// SimBackend is an in-process stand-in for a real messaging backend. It
// keeps per-account credentials and registered protocol clients so login,
// client enumeration, and bulk removal behave like the real thing. Accounts
// are registered lazily on first login.
type SimBackend struct {
	mu         sync.Mutex
	maxClients int
	accounts   map[string]string
	clients    map[string][]RegisteredClient
}

func NewSimBackend() *SimBackend {
	return &SimBackend{
		maxClients: defaultMaxClients,
		accounts:   make(map[string]string),
		clients:    make(map[string][]RegisteredClient),
	}
}

// SetMaxClients overrides the per-account client cap.
func (b *SimBackend) SetMaxClients(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > 0 {
		b.maxClients = n
	}
}

func (b *SimBackend) authenticate(creds Credentials) error {
	if creds.Email == "" || creds.Password == "" {
		return fmt.Errorf("backend rejected login: missing credentials")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if pw, ok := b.accounts[creds.Email]; ok {
		if pw != creds.Password {
			return fmt.Errorf("backend rejected login for %s: invalid credentials", creds.Email)
		}
		return nil
	}
	b.accounts[creds.Email] = creds.Password
	return nil
}

func (b *SimBackend) registerClient(email string, dev Device) (RegisteredClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients[email]) >= b.maxClients {
		return RegisteredClient{}, ErrTooManyClients
	}
	c := RegisteredClient{ID: uuid.NewString(), Model: dev.Name}
	b.clients[email] = append(b.clients[email], c)
	return c, nil
}

func (b *SimBackend) listClients(email string) []RegisteredClient {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RegisteredClient, len(b.clients[email]))
	copy(out, b.clients[email])
	return out
}

// ListClientsFor returns the protocol clients currently registered for an
// account. Intended for assertions in tests and scripted runs.
func (b *SimBackend) ListClientsFor(email string) []RegisteredClient {
	return b.listClients(email)
}

func (b *SimBackend) removeClient(email, clientID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.clients[email]
	for i, c := range list {
		if c.ID == clientID {
			b.clients[email] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("client %s not registered for %s", clientID, email)
}

// SimFactory builds SimClients against a shared SimBackend.
type SimFactory struct {
	Backend *SimBackend
}

func NewSimFactory() *SimFactory {
	return &SimFactory{Backend: NewSimBackend()}
}

func (f *SimFactory) New(creds Credentials, backend models.Backend, device Device) Client {
	return &SimClient{backend: f.Backend, creds: creds, target: backend, device: device}
}

// SimClient simulates one messaging session. Sends echo an event for the
// outgoing payload to the attached handler, the way a real client emits one
// event per outbound payload. Event delivery is synchronous on the calling
// goroutine.
type SimClient struct {
	backend *SimBackend
	creds   Credentials
	target  models.Backend
	device  Device

	mu           sync.Mutex
	handler      EventHandler
	userID       string
	clientID     string
	loggedIn     bool
	availability string
	archived     map[string]bool
	muted        map[string]bool
}

func (c *SimClient) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.backend.authenticate(c.creds); err != nil {
		return err
	}
	c.mu.Lock()
	// stable per-account user id, matching how a backend would resolve the
	// same account to the same user across sessions
	c.userID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(c.creds.Email)).String()
	c.archived = make(map[string]bool)
	c.muted = make(map[string]bool)
	c.mu.Unlock()

	reg, err := c.backend.registerClient(c.creds.Email, c.device)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// the session is authenticated even when client registration is
		// refused; bulk removal relies on enumerating clients in this state
		c.loggedIn = true
		return err
	}
	c.clientID = reg.ID
	c.loggedIn = true
	return nil
}

func (c *SimClient) Listen(handler EventHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("listen before login")
	}
	c.handler = handler
	return nil
}

func (c *SimClient) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	clientID := c.clientID
	loggedIn := c.loggedIn
	c.loggedIn = false
	c.handler = nil
	c.mu.Unlock()
	if !loggedIn {
		return fmt.Errorf("logout before login")
	}
	if clientID != "" {
		_ = c.backend.removeClient(c.creds.Email, clientID)
	}
	return nil
}

func (c *SimClient) Send(ctx context.Context, conversationID string, p Payload) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}
	c.mu.Lock()
	if !c.loggedIn {
		c.mu.Unlock()
		return SendResult{}, fmt.Errorf("send before login")
	}
	from := c.userID
	c.mu.Unlock()

	id := uuid.NewString()
	ts := time.Now().UnixMilli()
	msg := MessageFromPayload(p, id, conversationID, from, ts)

	switch p.Type {
	case models.TypeText:
		c.deliver(Event{Type: EventText, Message: msg})
	case models.TypeImage:
		c.deliver(Event{Type: EventImage, Message: msg})
	case models.TypeAssetMeta:
		// a file upload is two payloads sharing one id: the metadata
		// announcement, then the uploaded data
		meta := msg
		meta.Content.Asset = &models.AssetContent{Original: p.Asset.Original}
		c.deliver(Event{Type: EventAssetMeta, Message: meta})
		data := msg
		data.Type = models.TypeAssetData
		data.Content.Asset = &models.AssetContent{
			Key:    uuid.NewString(),
			Token:  uuid.NewString(),
			SHA256: uuid.NewString(),
		}
		c.deliver(Event{Type: EventAssetData, Message: data})
	case models.TypeLocation:
		c.deliver(Event{Type: EventLocation, Message: msg})
	case models.TypePing:
		c.deliver(Event{Type: EventPing, Message: msg})
	case models.TypeEdit:
		c.deliver(Event{Type: EventEdit, Message: msg, ReplacesID: p.TargetID})
	case models.TypeDelete:
		c.deliver(Event{Type: EventDelete, TargetID: p.TargetID, ConversationID: conversationID})
	case models.TypeHide:
		c.deliver(Event{Type: EventHide, TargetID: p.TargetID, ConversationID: conversationID})
	case models.TypeClear:
		c.deliver(Event{Type: EventClear, ConversationID: conversationID})
	case models.TypeConfirmation:
		c.deliver(Event{Type: EventConfirmation, ConversationID: conversationID, Confirmation: &ConfirmationEvent{
			From:    from,
			Status:  p.Status,
			FirstID: p.TargetID,
			MoreIDs: p.MoreTargetIDs,
		}})
	case models.TypeReaction:
		// reactions produce no projection event; the registry records the
		// self-sent message directly
	}
	return SendResult{MessageID: id, Time: ts}, nil
}

func (c *SimClient) SetAvailability(ctx context.Context, status string) error {
	return c.withSession(ctx, func() { c.availability = status })
}

func (c *SimClient) SetArchived(ctx context.Context, conversationID string, archived bool) error {
	return c.withSession(ctx, func() { c.archived[conversationID] = archived })
}

func (c *SimClient) SetMuted(ctx context.Context, conversationID string, muted bool) error {
	return c.withSession(ctx, func() { c.muted[conversationID] = muted })
}

func (c *SimClient) SendTyping(ctx context.Context, conversationID string, typing bool) error {
	return c.withSession(ctx, func() {})
}

func (c *SimClient) ResetSession(ctx context.Context, conversationID string) error {
	return c.withSession(ctx, func() {})
}

func (c *SimClient) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *SimClient) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

func (c *SimClient) RegisteredClients(ctx context.Context) ([]RegisteredClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.backend.listClients(c.creds.Email), nil
}

func (c *SimClient) RemoveClient(ctx context.Context, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.backend.removeClient(c.creds.Email, clientID)
}

// Inject delivers an inbound event to the session's handler, simulating
// traffic from another participant. Intended for tests and scripted runs.
func (c *SimClient) Inject(ev Event) {
	c.deliver(ev)
}

func (c *SimClient) deliver(ev Event) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (c *SimClient) withSession(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("operation before login")
	}
	fn()
	return nil
}
