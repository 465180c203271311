package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/app"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	resultQueries "github.com/felixgeelhaar/panelist/internal/results/application/queries"
	"github.com/felixgeelhaar/panelist/pkg/config"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

const owner = "owner@example.com"

func newTestServer(t *testing.T, defaultOwner string) http.Handler {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "api.db"),
		CacheTTL:       time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	serverCfg := DefaultServerConfig()
	serverCfg.DefaultOwner = defaultOwner
	return NewServer(serverCfg, NewHandlers(c), logger).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, h, owner, method, path, body)
}

func doAs(t *testing.T, h http.Handler, ownerEmail, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if ownerEmail != "" {
		req.Header.Set(HeaderOwnerEmail, ownerEmail)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createInterview(t *testing.T, h http.Handler, title string) InterviewResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/interviews", CreateInterviewRequest{Title: title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[InterviewResponse](t, rec)
}

func fillInterview(t *testing.T, h http.Handler, id uuid.UUID) SaveResponse {
	t.Helper()
	rec := do(t, h, http.MethodPut, "/api/v1/interviews/"+id.String(), commands.Draft{
		Title: "Backend Engineer",
		Tasks: []commands.DraftTask{{
			Title:           "System design",
			Prompt:          "Design a URL shortener",
			DurationMinutes: 45,
			Criteria:        []commands.DraftCriterion{{Name: "Hire", Type: "boolean"}},
		}},
		GeneralCriteria: []commands.DraftCriterion{{Name: "Communication", Type: "numeric"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[SaveResponse](t, rec)
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, "")

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	health := decode[observability.OverallHealth](t, rec)
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
	assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
}

func TestServer_CorrelationIDEchoed(t *testing.T) {
	h := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderCorrelationID, "corr-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get(HeaderCorrelationID))
}

func TestServer_OwnerRequired(t *testing.T) {
	h := newTestServer(t, "")

	rec := doAs(t, h, "", http.MethodGet, "/api/v1/interviews", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DefaultOwner(t *testing.T) {
	h := newTestServer(t, "Default@Example.com")

	rec := doAs(t, h, "", http.MethodPost, "/api/v1/interviews", CreateInterviewRequest{Title: "Defaulted"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "default@example.com", decode[InterviewResponse](t, rec).OwnerEmail)
}

func TestServer_InterviewLifecycle(t *testing.T) {
	h := newTestServer(t, "")

	created := createInterview(t, h, "Backend Engineer")
	assert.Equal(t, "draft", created.Status)
	assert.Empty(t, created.Tasks)

	saved := fillInterview(t, h, created.ID)
	assert.Equal(t, commands.SaveCounts{TasksUpserted: 1, CriteriaUpserted: 2}, saved.Counts)
	require.Len(t, saved.Interview.Tasks, 1)
	require.Len(t, saved.Interview.Tasks[0].Criteria, 1)
	_, err := uuid.Parse(saved.Interview.Tasks[0].ID)
	assert.NoError(t, err, "saved task carries its persisted id")

	// sending the fetched interview back is a no-op save
	rec := do(t, h, http.MethodGet, "/api/v1/interviews/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/v1/interviews/"+created.ID.String(), rec.Body.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, commands.SaveCounts{TasksUpserted: 1, CriteriaUpserted: 2}, decode[SaveResponse](t, rec).Counts)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews/"+created.ID.String()+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "live", decode[SaveResponse](t, rec).Interview.Status)

	rec = do(t, h, http.MethodGet, "/api/v1/interviews?status=live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode[struct {
		Interviews []queries.InterviewSummary `json:"interviews"`
		Total      int                        `json:"total"`
	}](t, rec)
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, created.ID, listing.Interviews[0].ID)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews/"+created.ID.String()+"/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", decode[SaveResponse](t, rec).Interview.Status)

	rec = do(t, h, http.MethodPut, "/api/v1/interviews/"+created.ID.String(), commands.Draft{Title: "Rewritten"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/interviews/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decode[InterviewResponse](t, rec)
	assert.Equal(t, "Backend Engineer", closed.Title)
	assert.Len(t, closed.Tasks, 1)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews/"+created.ID.String()+"/publish", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/interviews/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/interviews/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PublishWithoutTasks(t *testing.T) {
	h := newTestServer(t, "")
	created := createInterview(t, h, "Empty")

	rec := do(t, h, http.MethodPost, "/api/v1/interviews/"+created.ID.String()+"/publish", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_OtherOwnerCannotSeeInterview(t *testing.T) {
	h := newTestServer(t, "")
	created := createInterview(t, h, "Private")

	rec := doAs(t, h, "intruder@example.com", http.MethodGet, "/api/v1/interviews/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doAs(t, h, "intruder@example.com", http.MethodDelete, "/api/v1/interviews/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_BadRequests(t *testing.T) {
	h := newTestServer(t, "")

	rec := do(t, h, http.MethodGet, "/api/v1/interviews/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews/import", []byte("version: 9\ninterview:\n  title: x\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decode[APIError](t, rec)
	assert.Equal(t, "bad_request", apiErr.Code)
}

func TestServer_ImportExport(t *testing.T) {
	h := newTestServer(t, "")
	created := createInterview(t, h, "Exported")
	fillInterview(t, h, created.ID)

	rec := do(t, h, http.MethodGet, "/api/v1/interviews/"+created.ID.String()+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	template := rec.Body.Bytes()

	rec = do(t, h, http.MethodPost, "/api/v1/interviews/import", template)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	imported := decode[SaveResponse](t, rec)
	assert.NotEqual(t, created.ID, imported.Interview.ID)
	assert.Equal(t, "draft", imported.Interview.Status)
	require.Len(t, imported.Interview.Tasks, 1)
	assert.Equal(t, "System design", imported.Interview.Tasks[0].Title)
}

func TestServer_Results(t *testing.T) {
	h := newTestServer(t, "")
	created := createInterview(t, h, "Backend Engineer")
	saved := fillInterview(t, h, created.ID)
	base := "/api/v1/interviews/" + created.ID.String()

	// invites need a live interview
	rec := do(t, h, http.MethodPost, base+"/candidates", InviteRequest{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/candidates", InviteRequest{Name: "Ada", Email: "ada@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	candidate := decode[CandidateResponse](t, rec)

	rec = do(t, h, http.MethodPost, base+"/candidates", InviteRequest{Name: "Ada again", Email: "ADA@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	candidateBase := base + "/candidates/" + candidate.ID.String()
	rec = do(t, h, http.MethodPost, candidateBase+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode[CandidateResponse](t, rec).CompletedAt)

	communication := saved.Interview.GeneralCriteria[0].ID
	rec = do(t, h, http.MethodPut, candidateBase+"/scores/"+communication, ScoreRequest{Value: ptr(4.0)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, candidateBase+"/scores/"+communication, ScoreRequest{Value: ptr(9.0)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPut, candidateBase+"/scores/"+communication, ScoreRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, candidateBase+"/notes", NoteRequest{Column: "Communication", Content: "Clear and structured"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, decode[CandidateResponse](t, rec).Notes)

	rec = do(t, h, http.MethodGet, base+"/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[resultQueries.ResultsDTO](t, rec)
	assert.Equal(t, 1, results.Stats.Invited)
	assert.Equal(t, 1, results.Stats.Completed)
	assert.Equal(t, 1, results.Stats.Graded)
	require.Len(t, results.Candidates, 1)
	require.NotNil(t, results.Candidates[0].OverallScore)
	assert.InDelta(t, 4.0, *results.Candidates[0].OverallScore, 0.001)

	rec = do(t, h, http.MethodPost, base+"/candidates/"+uuid.NewString()+"/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToAPIError(t *testing.T) {
	stale := &commands.SaveError{Step: commands.StepUpdateInterview, Err: interviews.ErrStaleInterview}
	assert.Equal(t, http.StatusConflict, toAPIError(stale).Status)

	foreign := fmt.Errorf("criterion x is not part of interview y: %w", interviews.ErrCriterionNotFound)
	assert.Equal(t, http.StatusUnprocessableEntity, toAPIError(foreign).Status)

	assert.Equal(t, http.StatusUnprocessableEntity, toAPIError(interviews.ErrInterviewClosed).Status)
	assert.Equal(t, http.StatusInternalServerError, toAPIError(errors.New("boom")).Status)
}

func TestServer_RecoversFromPanic(t *testing.T) {
	s := &Server{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	h := s.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func ptr[T any](v T) *T { return &v }
