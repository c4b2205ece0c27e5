// Package api serves the OctoFit dashboard: server-rendered pages, the JSON
// view API and health checks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/events"
	"example.com/octofit/internal/outbox"
	"example.com/octofit/internal/view"
)

// Backend is the REST API the views read from.
type Backend interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id domain.ID, update domain.UserUpdate) (*domain.User, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	ListLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
	ListWorkouts(ctx context.Context) ([]domain.Workout, error)
}

var errUserNotFound = errors.New("user not found")

// Handler coordinates HTTP requests with per-request viewers.
type Handler struct {
	backend    Backend
	recorder   outbox.Recorder
	closeDelay time.Duration
	logger     *log.Logger
	pages      map[string]*template.Template
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder stores a user.updated event for every successful save.
func WithRecorder(r outbox.Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithCloseDelay sets how long the save confirmation stays up.
func WithCloseDelay(d time.Duration) Option {
	return func(h *Handler) { h.closeDelay = d }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler builds a Handler. It fails only when the embedded templates do
// not parse.
func NewHandler(backend Backend, opts ...Option) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		backend:    backend,
		recorder:   outbox.NoopRecorder{},
		closeDelay: view.DefaultCloseDelay,
		logger:     log.New(log.Writer(), "[api] ", log.LstdFlags),
		pages:      pages,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /users", h.usersPage)
	mux.HandleFunc("GET /users/{id}/edit", h.editUserPage)
	mux.HandleFunc("POST /users/{id}", h.saveUserForm)
	mux.HandleFunc("GET /teams", h.teamsPage)
	mux.HandleFunc("GET /activities", h.activitiesPage)
	mux.HandleFunc("GET /leaderboard", h.leaderboardPage)
	mux.HandleFunc("GET /workouts", h.workoutsPage)
	mux.HandleFunc("GET /workouts/{id}", h.workoutPage)

	mux.HandleFunc("GET /api/views/{name}", h.viewSnapshot)
	mux.HandleFunc("PUT /api/users/{id}", h.updateUser)

	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// mountAndWait loads c for the lifetime of ctx. The caller unmounts.
func mountAndWait[T any](ctx context.Context, c *view.Collection[T]) (view.State[T], error) {
	c.Mount(ctx)
	return c.Wait(ctx)
}

func (h *Handler) newUsers() *view.UsersView {
	return view.NewUsers(h.backend,
		view.WithCloseDelay(h.closeDelay),
		view.WithOnSaved(h.recordSaved),
	)
}

// saveUser runs the edit workflow against a mounted users view: select the
// record, merge the submitted fields, save, then wait for the refreshed list.
func (h *Handler) saveUser(ctx context.Context, users *view.UsersView, id domain.ID, form domain.UserUpdate) (*domain.User, error) {
	user, ok := users.FindUser(id)
	if !ok {
		return nil, errUserNotFound
	}
	users.BeginEdit(user)
	fields := map[string]string{
		view.FieldName:  form.Name,
		view.FieldEmail: form.Email,
		view.FieldTeam:  form.Team,
	}
	for name, value := range fields {
		if err := users.UpdateField(name, value); err != nil {
			return nil, err
		}
	}
	updated, err := users.Save(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := users.Wait(ctx); err != nil {
		h.logger.Printf("users refresh after save: %v", err)
	}
	return updated, nil
}

func (h *Handler) recordSaved(ctx context.Context, saved view.SavedUser) {
	evt := events.UserUpdated{
		UserID: saved.ID.String(),
		Name:   saved.Update.Name,
		Email:  saved.Update.Email,
		Team:   saved.Update.Team,
	}
	if claims, ok := auth.FromContext(ctx); ok {
		evt.UpdatedBy = claims.Subject
	}
	if err := h.recorder.RecordUserUpdated(ctx, evt); err != nil {
		h.logger.Printf("record user.updated for %s: %v", saved.ID, err)
	}
}

// requireScope writes 401/403 and reports false when the request lacks scope.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
