package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ets/pkg/client"
	"ets/pkg/models"
	"ets/pkg/registry"
)

func newServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()
	reg := registry.New(client.NewSimFactory())
	router := mux.NewRouter()
	New(reg).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, url, bytes.NewReader(b))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func createInstance(t *testing.T, srv *httptest.Server, email, name string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/instance", map[string]any{
		"email":      email,
		"password":   "hunter2",
		"backend":    "staging",
		"deviceName": "e2e",
		"name":       name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return str(t, body["instanceId"])
}

func TestCreateInstance(t *testing.T) {
	srv, reg := newServer(t)
	id := createInstance(t, srv, "jasmine@example.com", "jasmine")
	assert.NotEmpty(t, id)
	assert.True(t, reg.Exists(id))
}

func TestCreateInstanceValidation(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/instance", map[string]any{
		"backend": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg := str(t, body["error"])
	assert.Contains(t, msg, "email is required")
	assert.Contains(t, msg, "password is required")
	assert.Contains(t, msg, "backend must be one of")
}

func TestCreateInstanceLoginRejected(t *testing.T) {
	srv, _ := newServer(t)
	// first login registers the account; second with a wrong password is
	// rejected by the simulated backend
	createInstance(t, srv, "marge@example.com", "marge")
	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/instance", map[string]any{
		"email":      "marge@example.com",
		"password":   "wrong",
		"backend":    "staging",
		"deviceName": "e2e",
		"name":       "marge2",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "login failed")
}

func TestGetAndListInstances(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "lisa@example.com", "lisa")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/instance/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, str(t, body["instanceId"]))
	assert.Equal(t, "lisa", str(t, body["name"]))
	assert.Equal(t, "staging", str(t, body["backend"]))

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/instance/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	listResp, err := http.Get(srv.URL + "/api/v1/instances")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list map[string]struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "lisa", list[id].Name)
}

func TestDeleteInstance(t *testing.T) {
	srv, reg := newServer(t)
	id := createInstance(t, srv, "bart@example.com", "bart")

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/instance/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, reg.Exists(id))

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/instance/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendTextAndGetMessages(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "maggie@example.com", "maggie")
	opURL := srv.URL + "/api/v1/instance/" + id

	resp, body := doJSON(t, http.MethodPost, opURL+"/sendText", map[string]any{
		"conversationId": "conv-1",
		"text":           "Hello from Maggie",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgID := str(t, body["messageId"])
	assert.NotEmpty(t, msgID)
	assert.Equal(t, "maggie", str(t, body["name"]))

	resp, body = doJSON(t, http.MethodPost, opURL+"/getMessages", map[string]any{
		"conversationId": "conv-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(body["messages"], &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgID, msgs[0].ID)
	assert.Equal(t, "Hello from Maggie", msgs[0].Content.Text)
}

func TestSendTextValidation(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "ned@example.com", "ned")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/instance/"+id+"/sendText", map[string]any{
		"conversationId": "conv-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "text is required")
}

func TestSendTextUnknownInstance(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/instance/nope/sendText", map[string]any{
		"conversationId": "conv-1",
		"text":           "hello",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "instance not found")
}

func TestUpdateTextReplaces(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "rod@example.com", "rod")
	opURL := srv.URL + "/api/v1/instance/" + id

	_, body := doJSON(t, http.MethodPost, opURL+"/sendText", map[string]any{
		"conversationId": "conv-1",
		"text":           "orignal",
	})
	origID := str(t, body["messageId"])

	resp, body := doJSON(t, http.MethodPost, opURL+"/updateText", map[string]any{
		"conversationId": "conv-1",
		"messageId":      origID,
		"text":           "original",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newID := str(t, body["messageId"])
	assert.NotEqual(t, origID, newID)

	_, body = doJSON(t, http.MethodPost, opURL+"/getMessages", map[string]any{
		"conversationId": "conv-1",
	})
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(body["messages"], &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "original", msgs[0].Content.Text)
}

func TestEphemeralConfirmationUnknownTarget(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "todd@example.com", "todd")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/instance/"+id+"/sendEphemeralConfirmationRead", map[string]any{
		"conversationId": "conv-1",
		"firstMessageId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "message not found")
}

func TestAvailabilityValidation(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "moe@example.com", "moe")
	opURL := srv.URL + "/api/v1/instance/" + id + "/availability"

	resp, body := doJSON(t, http.MethodPost, opURL, map[string]any{"status": "sleeping"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "status must be one of")

	resp, _ = doJSON(t, http.MethodPost, opURL, map[string]any{"status": "away"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteEverywhereRemovesMessage(t *testing.T) {
	srv, _ := newServer(t)
	id := createInstance(t, srv, "apu@example.com", "apu")
	opURL := srv.URL + "/api/v1/instance/" + id

	_, body := doJSON(t, http.MethodPost, opURL+"/sendText", map[string]any{
		"conversationId": "conv-1",
		"text":           "going away",
	})
	msgID := str(t, body["messageId"])

	resp, _ := doJSON(t, http.MethodPost, opURL+"/deleteEverywhere", map[string]any{
		"conversationId": "conv-1",
		"messageId":      msgID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, http.MethodPost, opURL+"/getMessages", map[string]any{
		"conversationId": "conv-1",
	})
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(body["messages"], &msgs))
	assert.Empty(t, msgs)
}

func TestRemoveAllClients(t *testing.T) {
	srv, reg := newServer(t)
	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, createInstance(t, srv, "krusty@example.com", fmt.Sprintf("krusty-%d", i)))
	}

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/clients", map[string]any{
		"email":    "krusty@example.com",
		"password": "hunter2",
		"backend":  "staging",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var removed []string
	require.NoError(t, json.Unmarshal(body["removed"], &removed))
	assert.Len(t, removed, 3)
	for _, id := range ids {
		assert.False(t, reg.Exists(id))
	}
}

func TestRemoveAllClientsUnknownBackend(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/clients", map[string]any{
		"email":    "krusty@example.com",
		"password": "hunter2",
		"backend":  "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, str(t, body["error"]), "backend must be one of")
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
