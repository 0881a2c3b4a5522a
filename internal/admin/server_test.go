package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotorlabs/rotorctl/internal/journal"
	"github.com/rotorlabs/rotorctl/internal/schedule"
	"github.com/rotorlabs/rotorctl/internal/testutil/testlog"
)

func newTestServer(status schedule.Status, actions map[string]Action) *Server {
	return New(Options{
		Addr:    ":0",
		Status:  func() schedule.Status { return status },
		Actions: actions,
	})
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealthAlwaysOK(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, nil)

	rr := do(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "rotorctl", body["service"])
}

func TestReadyTracksRenderState(t *testing.T) {
	testlog.Start(t)
	rr := do(t, newTestServer(schedule.Status{Ready: false}, nil), http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, newTestServer(schedule.Status{Ready: true}, nil), http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["ready"])
}

func TestStatusServesSnapshot(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{Ready: true, Entries: 4, Interval: "1h0m0s", OutputSHA: "ab12"}, nil)

	rr := do(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, float64(4), body["entries"])
	assert.Equal(t, "1h0m0s", body["interval"])
	assert.Equal(t, "ab12", body["output_sha256"])
}

func TestActionsListIsSorted(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, map[string]Action{
		"rotate": func(context.Context) (string, error) { return "", nil },
		"render": func(context.Context) (string, error) { return "", nil },
	})

	rr := do(t, s, http.MethodGet, "/actions")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Actions []string `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"render", "rotate"}, body.Actions)
}

func TestActionExecutionIncludesOutput(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, map[string]Action{
		"render": func(context.Context) (string, error) { return "published 4 entries", nil },
	})

	rr := do(t, s, http.MethodPost, "/actions/render")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "published 4 entries", body["output"])
}

func TestUnknownActionIs404(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, map[string]Action{})

	rr := do(t, s, http.MethodPost, "/actions/reboot")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFailingActionIs500(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, map[string]Action{
		"rotate": func(context.Context) (string, error) { return "", errors.New("tool exploded") },
	})

	rr := do(t, s, http.MethodPost, "/actions/rotate")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "tool exploded")
}

func TestActionsRequireTokenWhenConfigured(t *testing.T) {
	testlog.Start(t)
	s := New(Options{
		Addr:      ":0",
		AuthToken: "sekrit",
		Status:    func() schedule.Status { return schedule.Status{} },
		Actions: map[string]Action{
			"render": func(context.Context) (string, error) { return "done", nil },
		},
	})

	rr := do(t, s, http.MethodPost, "/actions/render")
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "missing token")

	req := httptest.NewRequest(http.MethodPost, "/actions/render", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong token")

	req = httptest.NewRequest(http.MethodPost, "/actions/render", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rr = do(t, s, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, rr.Code, "read routes stay open")
}

func TestHistoryServesJournalRuns(t *testing.T) {
	testlog.Start(t)
	started := time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC)
	var gotLimit int
	s := New(Options{
		Addr:   ":0",
		Status: func() schedule.Status { return schedule.Status{} },
		History: func(_ context.Context, limit int) ([]journal.Run, error) {
			gotLimit = limit
			return []journal.Run{{
				ID: 3, Kind: journal.KindRender, Started: started,
				Duration: 12 * time.Millisecond, OK: true, OutputSHA: "ab12",
			}}, nil
		},
	})

	rr := do(t, s, http.MethodGet, "/history?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, gotLimit)

	var body struct {
		Runs []map[string]any `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "render", body.Runs[0]["kind"])
	assert.Equal(t, "ab12", body.Runs[0]["output_sha"])
	assert.Equal(t, started.Format(time.RFC3339), body.Runs[0]["started"])
}

func TestHistoryRouteAbsentWithoutJournal(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, nil)

	rr := do(t, s, http.MethodGet, "/history")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExecuteActionSentinel(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(schedule.Status{}, nil)

	_, err := s.ExecuteAction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrActionNotFound)
}

func TestValidateBearer(t *testing.T) {
	testlog.Start(t)
	assert.NoError(t, validateBearer("tok", "Bearer tok"))
	assert.ErrorIs(t, validateBearer("tok", "Bearer nope"), ErrUnauthorized)
	assert.ErrorIs(t, validateBearer("tok", "tok"), ErrUnauthorized)
	assert.ErrorIs(t, validateBearer("tok", ""), ErrUnauthorized)
}
