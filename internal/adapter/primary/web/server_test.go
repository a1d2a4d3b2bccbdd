package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotimer/internal/adapter/secondary/sqlite"
	"pomotimer/internal/domain"
	"pomotimer/internal/usecase"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type memSnapshots struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	found    bool
}

func (m *memSnapshots) Load() (domain.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, m.found, nil
}

func (m *memSnapshots) Save(s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot, m.found = s, true
	return nil
}

type harness struct {
	session *usecase.SessionController
	db      *sqlite.DB
	stats   *usecase.StatisticsService
	server  *Server
	now     time.Time
}

func newHarness(t *testing.T, ui bool) *harness {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{db: db, now: t0}
	clock := func() time.Time { return h.now }
	h.stats = usecase.NewStatisticsService(db, clock)

	settings := domain.Settings{
		Focus:                   100 * time.Second,
		ShortBreak:              20 * time.Second,
		LongBreak:               60 * time.Second,
		SessionsBeforeLongBreak: 4,
	}
	session, err := usecase.NewSessionController(usecase.Dependencies{
		Snapshots:  &memSnapshots{},
		Statistics: h.stats,
	}, settings, usecase.Config{Now: clock, ManualTick: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	session.Start(ctx)
	t.Cleanup(func() {
		session.Close()
		cancel()
	})

	h.session = session
	h.server = NewServer(session, Options{
		UI:         ui,
		Statistics: h.stats,
		Tasks:      db,
		Now:        clock,
	})
	return h
}

func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateView {
	t.Helper()
	var view StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestStateIdle(t *testing.T) {
	h := newHarness(t, false)

	rec := h.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeState(t, rec)
	assert.Equal(t, domain.StatusIdle, view.Status)
	assert.Equal(t, "Focus", view.ModeName)
	assert.Equal(t, 100.0, view.Remaining)
	assert.Nil(t, view.StartDate)
}

func TestActionsDriveSession(t *testing.T) {
	h := newHarness(t, false)

	view := decodeState(t, h.do(t, http.MethodPost, "/api/focus", ""))
	assert.Equal(t, domain.StatusFocus, view.Status)
	require.NotNil(t, view.EndDate)
	assert.True(t, view.EndDate.Equal(t0.Add(100*time.Second)))

	h.now = t0.Add(25 * time.Second)
	view = decodeState(t, h.do(t, http.MethodPost, "/api/pause", ""))
	assert.Equal(t, domain.StatusPaused, view.Status)
	assert.InDelta(t, 0.25, view.FractionCompleted, 1e-9)

	// The client can rebuild the same progress from the dates alone.
	later := t0.Add(time.Hour)
	assert.InDelta(t, 0.25, view.Timer().FractionCompleted(later), 1e-9)

	view = decodeState(t, h.do(t, http.MethodPost, "/api/stop", ""))
	assert.Equal(t, domain.StatusIdle, view.Status)

	view = decodeState(t, h.do(t, http.MethodPost, "/api/break?long=true", ""))
	assert.Equal(t, domain.StatusBreak, view.Status)
	assert.Equal(t, domain.ModeLongBreak, view.Mode)
}

func TestActionRequiresPost(t *testing.T) {
	h := newHarness(t, false)

	rec := h.do(t, http.MethodGet, "/api/focus", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, domain.StatusIdle, h.session.State().Status)
}

func TestStats(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.stats.RecordFocusCompletion(25*time.Minute, t0))
	require.NoError(t, h.stats.RecordBreakTaken(t0.Add(26*time.Minute)))

	rec := h.do(t, http.MethodGet, "/api/stats?day="+domain.DayKey(t0), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var day dayView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	assert.Equal(t, 1, day.FocusSessions)
	assert.Equal(t, 1500.0, day.FocusSeconds)
	assert.Equal(t, 1, day.Breaks)

	rec = h.do(t, http.MethodGet, "/api/stats?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		FocusSessions int `json:"focusSessions"`
		Streak        int `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.FocusSessions)
	assert.Equal(t, 1, summary.Streak)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/stats?days=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/stats?day=yesterday", "").Code)
}

func TestTasksCRUD(t *testing.T) {
	h := newHarness(t, false)

	rec := h.do(t, http.MethodPost, "/api/tasks", `{"title":"write report"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created taskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "write report", created.Title)

	rec = h.do(t, http.MethodPatch, "/api/tasks/"+itoa(created.ID), `{"done":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated taskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Done)

	rec = h.do(t, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []taskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/tasks/"+itoa(created.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, "/api/tasks/"+itoa(created.ID), "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/tasks", `{"title":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPatch, "/api/tasks/abc", `{}`).Code)
}

func TestRootOnlyWithUI(t *testing.T) {
	api := newHarness(t, false)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/", "").Code)

	ui := newHarness(t, true)
	rec := ui.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Pomotimer</title>")
}

func TestEventsStream(t *testing.T) {
	h := newHarness(t, false)
	srv := httptest.NewServer(h.server.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, view := readEvent(t, reader)
	assert.Equal(t, "state", name)
	assert.Equal(t, domain.StatusIdle, view.Status)

	h.session.StartFocus()

	name, view = readEvent(t, reader)
	assert.Equal(t, "state", name)
	assert.Equal(t, domain.StatusFocus, view.Status)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, StateView) {
	t.Helper()
	var name string
	var view StateView
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &view))
		case line == "":
			return name, view
		}
	}
}

func TestClient(t *testing.T) {
	h := newHarness(t, false)
	srv := httptest.NewServer(h.server.Handler())
	defer srv.Close()

	client := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	ctx := context.Background()

	view, err := client.Do(ctx, "focus", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFocus, view.Status)

	view, err = client.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFocus, view.Status)

	_, err = client.Do(ctx, "rewind", false)
	require.ErrorIs(t, err, ErrUnknownAction)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
