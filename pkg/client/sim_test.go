package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ets/pkg/models"
)

func login(t *testing.T, f *SimFactory, email string) *SimClient {
	t.Helper()
	c := f.New(Credentials{Email: email, Password: "secret"}, models.BackendStaging, Device{Name: "e2e"})
	require.NoError(t, c.Login(context.Background()))
	return c.(*SimClient)
}

func TestLoginRegistersAccountAndClient(t *testing.T) {
	f := NewSimFactory()
	c := login(t, f, "anna@example.com")

	assert.NotEmpty(t, c.UserID())
	assert.NotEmpty(t, c.ClientID())
	assert.Len(t, f.Backend.ListClientsFor("anna@example.com"), 1)
}

func TestLoginStableUserID(t *testing.T) {
	f := NewSimFactory()
	a := login(t, f, "anna@example.com")
	b := login(t, f, "anna@example.com")
	assert.Equal(t, a.UserID(), b.UserID())
	assert.NotEqual(t, a.ClientID(), b.ClientID())
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	f := NewSimFactory()
	login(t, f, "anna@example.com")

	c := f.New(Credentials{Email: "anna@example.com", Password: "other"}, models.BackendStaging, Device{})
	err := c.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLoginFullAccountStillAuthenticated(t *testing.T) {
	f := NewSimFactory()
	f.Backend.SetMaxClients(1)
	login(t, f, "anna@example.com")

	c := f.New(Credentials{Email: "anna@example.com", Password: "secret"}, models.BackendStaging, Device{})
	err := c.Login(context.Background())
	require.ErrorIs(t, err, ErrTooManyClients)

	// enumeration still works so bulk removal can free slots
	clients, cerr := c.RegisteredClients(context.Background())
	require.NoError(t, cerr)
	assert.Len(t, clients, 1)
}

func TestSendTextEmitsEvent(t *testing.T) {
	f := NewSimFactory()
	c := login(t, f, "anna@example.com")

	var got []Event
	require.NoError(t, c.Listen(func(ev Event) { got = append(got, ev) }))

	res, err := c.Send(context.Background(), "conv-1", Text("hello"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, EventText, got[0].Type)
	assert.Equal(t, res.MessageID, got[0].Message.ID)
	assert.Equal(t, c.UserID(), got[0].Message.From)
	assert.Equal(t, "hello", got[0].Message.Content.Text)
}

func TestSendFileEmitsMetaThenData(t *testing.T) {
	f := NewSimFactory()
	c := login(t, f, "anna@example.com")

	var got []Event
	require.NoError(t, c.Listen(func(ev Event) { got = append(got, ev) }))

	res, err := c.Send(context.Background(), "conv-1", File([]byte("payload"), "notes.txt", "text/plain"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EventAssetMeta, got[0].Type)
	assert.Equal(t, EventAssetData, got[1].Type)
	// both halves share the send's message id
	assert.Equal(t, res.MessageID, got[0].Message.ID)
	assert.Equal(t, res.MessageID, got[1].Message.ID)
	assert.Equal(t, "notes.txt", got[0].Message.Content.Asset.Original.Name)
	assert.NotEmpty(t, got[1].Message.Content.Asset.Key)
}

func TestSendReactionEmitsNothing(t *testing.T) {
	f := NewSimFactory()
	c := login(t, f, "anna@example.com")

	var got []Event
	require.NoError(t, c.Listen(func(ev Event) { got = append(got, ev) }))

	res, err := c.Send(context.Background(), "conv-1", Reaction("m1", "👍"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)
	assert.Empty(t, got)
}

func TestLogoutFreesClientSlot(t *testing.T) {
	f := NewSimFactory()
	c := login(t, f, "anna@example.com")
	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, f.Backend.ListClientsFor("anna@example.com"))

	_, err := c.Send(context.Background(), "conv-1", Text("too late"))
	assert.Error(t, err)
}

func TestMessageFromPayloadEphemeral(t *testing.T) {
	ts := time.Now().UnixMilli()
	m := MessageFromPayload(Text("soon gone").Ephemeral(time.Minute), "m1", "conv-1", "u1", ts)
	assert.Equal(t, ts+time.Minute.Milliseconds(), m.ExpiresAt)

	m = MessageFromPayload(Text("stays"), "m2", "conv-1", "u1", ts)
	assert.Zero(t, m.ExpiresAt)
}
