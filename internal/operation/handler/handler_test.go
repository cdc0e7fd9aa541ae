package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/engine/memory"
	"convoy/internal/lifecycle"
	"convoy/pkg/platform/middleware/auth"
)

type fixture struct {
	engine *memory.Engine
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := memory.New()
	eng.Deploy("deploy")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	controller := lifecycle.NewController(eng, logger,
		lifecycle.WithAbortTimeout(time.Second),
		lifecycle.WithResumePollInterval(time.Millisecond))
	dispatcher := lifecycle.NewDispatcher(controller, logger)

	router := chi.NewRouter()
	New(controller, dispatcher, logger).Register(router)
	return &fixture{engine: eng, router: router}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.OperatorClaims{UserID: "deployer"}))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) startProcess(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/operations", StartRequest{DefinitionKey: "deploy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ProcessID)
	return resp.ProcessID
}

func TestStartProcess(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/operations", StartRequest{DefinitionKey: "deploy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deploy:1", resp.DefinitionID)
}

func TestStartRequiresDefinitionKey(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/operations", StartRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartRequiresAuthenticatedOperator(t *testing.T) {
	f := newFixture(t)
	raw, err := json.Marshal(StartRequest{DefinitionKey: "deploy"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/operations", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStateReflectsJob(t *testing.T) {
	f := newFixture(t)
	processID := f.startProcess(t)

	rec := f.do(t, http.MethodGet, "/operations/"+processID+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, lifecycle.StateRunning, state.State)

	f.engine.PlaceJob(processID, "step blew up")
	rec = f.do(t, http.MethodGet, "/operations/"+processID+"/state", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, lifecycle.StateError, state.State)

	f.engine.ClearJob(processID)
	rec = f.do(t, http.MethodGet, "/operations/"+processID+"/state", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, lifecycle.StateActionRequired, state.State)
}

func TestActionsFollowState(t *testing.T) {
	f := newFixture(t)
	processID := f.startProcess(t)

	f.engine.PlaceJob(processID, "step blew up")
	rec := f.do(t, http.MethodGet, "/operations/"+processID+"/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var actions ActionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &actions))
	assert.Equal(t, lifecycle.StateError, actions.State)
	assert.Equal(t, []string{lifecycle.ActionAbort, lifecycle.ActionRetry}, actions.Actions)
}

func TestExecuteAbortAction(t *testing.T) {
	f := newFixture(t)
	processID := f.startProcess(t)

	rec := f.do(t, http.MethodPost, "/operations/"+processID+"/actions/abort", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, f.engine.Deleted(processID))
}

func TestExecuteUnknownActionRejected(t *testing.T) {
	f := newFixture(t)
	processID := f.startProcess(t)

	rec := f.do(t, http.MethodPost, "/operations/"+processID+"/actions/restart", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
