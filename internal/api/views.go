package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/view"
)

// ViewResponse wraps a derived view snapshot.
type ViewResponse struct {
	View string `json:"view"`
	Data any    `json:"data"`
}

// errLoad carries the viewer's load error message.
type errLoad struct{ msg string }

func (e errLoad) Error() string { return e.msg }

func snapshot[T, V any](ctx context.Context, c *view.Collection[T], build func(T) V) (V, error) {
	defer c.Unmount()
	var zero V
	state, err := mountAndWait(ctx, c)
	if err != nil {
		return zero, err
	}
	if state.Status == view.StatusError {
		return zero, errLoad{msg: state.Err}
	}
	return build(state.Data), nil
}

func (h *Handler) viewSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeDashboardRead) {
		return
	}

	ctx := r.Context()
	name := r.PathValue("name")
	var (
		data any
		err  error
	)
	switch name {
	case "users":
		users := h.newUsers()
		defer users.Unmount()
		data, err = snapshot(ctx, users.Collection, view.BuildUsers)
	case "teams":
		data, err = snapshot(ctx, view.NewTeams(h.backend), view.BuildTeams)
	case "activities":
		filter := r.URL.Query().Get("type")
		data, err = snapshot(ctx, view.NewActivities(h.backend), func(a []domain.Activity) view.ActivitiesView {
			return view.BuildActivities(a, filter)
		})
	case "leaderboard":
		data, err = snapshot(ctx, view.NewLeaderboard(h.backend), view.BuildLeaderboard)
	case "workouts":
		data, err = snapshot(ctx, view.NewWorkouts(h.backend), view.BuildWorkouts)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown view "+name)
		return
	}

	var loadErr errLoad
	switch {
	case errors.As(err, &loadErr):
		writeError(w, http.StatusBadGateway, "load_failed", loadErr.msg)
	case err != nil:
		writeError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		writeJSON(w, http.StatusOK, ViewResponse{View: name, Data: data})
	}
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeUsersWrite) {
		return
	}

	var req domain.UserUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	users := h.newUsers()
	defer users.Unmount()

	state, err := mountAndWait(r.Context(), users.Collection)
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, "timeout", err.Error())
		return
	}
	if state.Status == view.StatusError {
		writeError(w, http.StatusBadGateway, "load_failed", state.Err)
		return
	}

	updated, err := h.saveUser(r.Context(), users, domain.ID(r.PathValue("id")), req)
	switch {
	case errors.Is(err, errUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, "save_failed", err.Error())
	default:
		writeJSON(w, http.StatusOK, updated)
	}
}
