package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/engine"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

type fakeConversation struct {
	err     error
	ended   string
	lastMsg string
}

func (f *fakeConversation) Turn(_ context.Context, id, utterance string) (*engine.Reply, error) {
	f.lastMsg = utterance
	if f.err != nil {
		return &engine.Reply{SessionID: id, Answer: composer.ApologyAnswer}, f.err
	}
	return &engine.Reply{SessionID: id, Answer: "Status polis: Aktif"}, nil
}

func (f *fakeConversation) Memory(_ context.Context, id string) (*model.SessionMemory, error) {
	return model.NewSessionMemory(id), nil
}

func (f *fakeConversation) History(_ context.Context, id string) ([]*schema.Message, error) {
	if id == "new" {
		return nil, nil
	}
	return []*schema.Message{
		schema.UserMessage("status polis saya"),
		schema.AssistantMessage("Status polis: Aktif", nil),
	}, nil
}

func (f *fakeConversation) EndSession(_ context.Context, id string) error {
	f.ended = id
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostMessage(t *testing.T) {
	conv := &fakeConversation{}
	r := NewRouter(conv)

	w := do(t, r, http.MethodPost, "/v1/sessions/s1/messages", map[string]string{"message": "  PLS-2024-0001 "})
	require.Equal(t, http.StatusOK, w.Code)

	var reply engine.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "s1", reply.SessionID)
	assert.Equal(t, "Status polis: Aktif", reply.Answer)
	assert.Equal(t, "PLS-2024-0001", conv.lastMsg)
}

func TestPostMessage_Validation(t *testing.T) {
	r := NewRouter(&fakeConversation{})

	w := do(t, r, http.MethodPost, "/v1/sessions/s1/messages", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/sessions/s1/messages", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessage_FailureReturnsApology(t *testing.T) {
	r := NewRouter(&fakeConversation{err: errx.ContractViolation("decision", "bad status")})

	w := do(t, r, http.MethodPost, "/v1/sessions/s1/messages", map[string]string{"message": "halo"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errx.ContractViolationMessage, resp.Error)
	assert.Equal(t, composer.ApologyAnswer, resp.Answer)
}

func TestPostMessage_PlainErrorHidesDetail(t *testing.T) {
	r := NewRouter(&fakeConversation{err: errors.New("dial tcp: refused")})

	w := do(t, r, http.MethodPost, "/v1/sessions/s1/messages", map[string]string{"message": "halo"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestSessionLifecycle(t *testing.T) {
	conv := &fakeConversation{}
	r := NewRouter(conv)

	w := do(t, r, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created["session_id"], 36)

	w = do(t, r, http.MethodGet, "/v1/sessions/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/v1/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", conv.ended)
}

func TestGetHistory(t *testing.T) {
	r := NewRouter(&fakeConversation{})

	w := do(t, r, http.MethodGet, "/v1/sessions/s1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		SessionID string `json:"session_id"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "s1", body.SessionID)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "Status polis: Aktif", body.Messages[1].Content)

	w = do(t, r, http.MethodGet, "/v1/sessions/new/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

func TestHealth(t *testing.T) {
	w := do(t, NewRouter(&fakeConversation{}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
