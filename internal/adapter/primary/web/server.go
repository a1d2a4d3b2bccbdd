package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
	"pomotimer/internal/usecase"
)

// Statistics is the read side the stats endpoint needs.
type Statistics interface {
	Day(day string) (domain.DayStats, error)
	Summary(days int) (usecase.Summary, error)
}

// Options configures what the server exposes.
type Options struct {
	Addr string
	// UI serves the HTML page on "/"; without it only the API is exposed.
	UI         bool
	Statistics Statistics
	Tasks      domain.TaskRepository
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is a primary adapter that exposes the HTTP API and UI.
// It depends on the use case (primary port).
type Server struct {
	session usecase.SessionUseCase
	stats   Statistics
	tasks   domain.TaskRepository
	now     func() time.Time
	server  *http.Server
}

// NewServer creates the HTTP server bound to opts.Addr.
func NewServer(session usecase.SessionUseCase, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	srv := &Server{
		session: session,
		stats:   opts.Statistics,
		tasks:   opts.Tasks,
		now:     opts.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", srv.handleState)
	for action := range actions {
		mux.HandleFunc("/api/"+action, srv.handleAction(action))
	}
	mux.HandleFunc("/api/events", srv.handleEvents)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/tasks", srv.handleTasks)
	mux.HandleFunc("/api/tasks/{id}", srv.handleTask)
	if opts.UI {
		mux.HandleFunc("/", srv.handleRoot)
	}

	srv.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve blocks serving on an already bound listener.
func (s *Server) Serve(listener net.Listener) error {
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// actions maps the transition endpoints to the use case.
var actions = map[string]func(usecase.SessionUseCase, *http.Request){
	"focus":  func(uc usecase.SessionUseCase, _ *http.Request) { uc.StartFocus() },
	"break":  func(uc usecase.SessionUseCase, r *http.Request) { uc.StartBreak(wantsLongBreak(r)) },
	"pause":  func(uc usecase.SessionUseCase, _ *http.Request) { uc.Pause() },
	"resume": func(uc usecase.SessionUseCase, _ *http.Request) { uc.Resume() },
	"stop":   func(uc usecase.SessionUseCase, _ *http.Request) { uc.Stop() },
	"skip":   func(uc usecase.SessionUseCase, _ *http.Request) { uc.Skip() },
}

func wantsLongBreak(r *http.Request) bool {
	long, _ := strconv.ParseBool(r.URL.Query().Get("long"))
	return long
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, http.StatusOK, StateViewOf(s.session.State(), s.now()))
}

func (s *Server) handleAction(action string) http.HandlerFunc {
	apply := actions[action]
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		apply(s.session, r)
		respondJSON(w, http.StatusOK, StateViewOf(s.session.State(), s.now()))
	}
}

// handleEvents streams refresh signals as server-sent events. The first event
// is the current state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := s.session.Subscribe(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "state", StateViewOf(s.session.State(), s.now())); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			view := StateViewOf(ev.Payload.State.Timer(), s.now())
			if err := writeEvent(w, string(ev.Type), view); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.stats == nil {
		http.Error(w, "statistics unavailable", http.StatusServiceUnavailable)
		return
	}

	if day := r.URL.Query().Get("day"); day != "" {
		stats, err := s.stats.Day(day)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, http.StatusOK, dayToView(stats))
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	summary, err := s.stats.Summary(days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]dayView, 0, len(summary.Days))
	for _, day := range summary.Days {
		views = append(views, dayToView(day))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"from":          summary.From,
		"to":            summary.To,
		"days":          views,
		"focusSessions": summary.FocusSessions,
		"focusSeconds":  summary.FocusTime.Seconds(),
		"breaks":        summary.Breaks,
		"streak":        summary.Streak,
	})
}

type taskPayload struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if s.tasks == nil {
		http.Error(w, "tasks unavailable", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodGet:
		tasks, err := s.tasks.List()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		views := make([]taskView, 0, len(tasks))
		for _, task := range tasks {
			views = append(views, taskToView(task))
		}
		respondJSON(w, http.StatusOK, views)
	case http.MethodPost:
		var req taskPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		task, err := s.tasks.Add(*req.Title)
		if err != nil {
			respondTaskError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, taskToView(task))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if s.tasks == nil {
		http.Error(w, "tasks unavailable", http.StatusServiceUnavailable)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req taskPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		var task domain.Task
		if req.Title != nil {
			if task, err = s.tasks.Rename(id, *req.Title); err != nil {
				respondTaskError(w, err)
				return
			}
		}
		if req.Done != nil {
			if task, err = s.tasks.SetDone(id, *req.Done); err != nil {
				respondTaskError(w, err)
				return
			}
		}
		if req.Title == nil && req.Done == nil {
			http.Error(w, "nothing to update", http.StatusBadRequest)
			return
		}
		respondJSON(w, http.StatusOK, taskToView(task))
	case http.MethodDelete:
		if err := s.tasks.Delete(id); err != nil {
			respondTaskError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func respondTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyTitle):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warnf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
