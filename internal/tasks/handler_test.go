package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmesh/taskmesh/internal/shared"
)

func newTestRouter() (*chi.Mux, *mockRepository) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	handler := NewHandler(slog.Default(), svc)

	r := chi.NewRouter()
	r.Route("/tasks", handler.MountRoutes)
	return r, repo
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string, actorID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if actorID != nil {
		req = req.WithContext(shared.ContextWithActor(context.Background(), *actorID))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreateTask(t *testing.T) {
	router, _ := newTestRouter()
	posterID := uuid.New()

	body := `{"title":"Mow my lawn","description":"Front and back yard","credits":25,"estimated_time":60}`
	rr := doRequest(t, router, http.MethodPost, "/tasks", body, &posterID)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var task Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	assert.Equal(t, StatusOpen, task.Status)
	assert.Equal(t, posterID, task.PosterID)
}

func TestHandlerCreateTaskRequiresActor(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"title":"t","description":"d","credits":25,"estimated_time":60}`
	rr := doRequest(t, router, http.MethodPost, "/tasks", body, nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandlerCreateTaskInvalidBody(t *testing.T) {
	router, _ := newTestRouter()
	posterID := uuid.New()

	rr := doRequest(t, router, http.MethodPost, "/tasks", `{not json`, &posterID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, router, http.MethodPost, "/tasks", `{"title":"t","description":"d","credits":-5,"estimated_time":60}`, &posterID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerAcceptTask(t *testing.T) {
	router, repo := newTestRouter()
	acceptorID := uuid.New()
	task := newOpenTask(repo, uuid.New(), 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/accept", "", &acceptorID)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, StatusInProgress, updated.Status)
}

func TestHandlerAcceptOwnTask(t *testing.T) {
	router, repo := newTestRouter()
	posterID := uuid.New()
	task := newOpenTask(repo, posterID, 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/accept", "", &posterID)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandlerAcceptConflict(t *testing.T) {
	router, repo := newTestRouter()
	actorID := uuid.New()
	task := acceptedTask(repo, uuid.New(), uuid.New(), 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/accept", "", &actorID)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandlerCompleteInsufficientFunds(t *testing.T) {
	router, repo := newTestRouter()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 5
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", "", &posterID)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandlerCompleteTask(t *testing.T) {
	router, repo := newTestRouter()
	posterID := uuid.New()
	acceptorID := uuid.New()
	repo.balances[posterID] = 100
	repo.balances[acceptorID] = 0
	task := acceptedTask(repo, posterID, acceptorID, 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", "", &posterID)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, int64(70), repo.balances[posterID])
}

func TestHandlerGetMissingTask(t *testing.T) {
	router, _ := newTestRouter()

	rr := doRequest(t, router, http.MethodGet, "/tasks/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerGetInvalidID(t *testing.T) {
	router, _ := newTestRouter()

	rr := doRequest(t, router, http.MethodGet, "/tasks/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerListDefaultsToOpen(t *testing.T) {
	router, repo := newTestRouter()
	newOpenTask(repo, uuid.New(), 10)
	done := newOpenTask(repo, uuid.New(), 20)
	done.Status = StatusCompleted

	rr := doRequest(t, router, http.MethodGet, "/tasks", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Tasks []Task `json:"tasks"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, StatusOpen, resp.Tasks[0].Status)
}

func TestHandlerListRejectsUnknownStatus(t *testing.T) {
	router, _ := newTestRouter()

	rr := doRequest(t, router, http.MethodGet, "/tasks?status=BOGUS", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerCancelWithoutActor(t *testing.T) {
	router, repo := newTestRouter()
	task := newOpenTask(repo, uuid.New(), 30)

	rr := doRequest(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/cancel", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
