package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/view"
)

const savedFlash = "User updated successfully!"

type homeCard struct {
	Title       string
	Description string
	Path        string
}

var homeCards = []homeCard{
	{"Users", "Browse athletes and update their profiles.", "/users"},
	{"Teams", "See how Team Marvel and Team DC line up.", "/teams"},
	{"Activities", "Review the latest logged workouts.", "/activities"},
	{"Leaderboard", "Find out who is burning the most calories.", "/leaderboard"},
	{"Workouts", "Pick a suggested training program.", "/workouts"},
}

type editPage struct {
	User  domain.User
	Edit  view.EditState
	Teams []string
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home.html", page{Title: "Home", Data: homeCards})
}

// loadFailed renders the blocking alert for a viewer that could not load.
// It reports true when the response has been written.
func loadFailed[T any](h *Handler, w http.ResponseWriter, state view.State[T], err error) bool {
	if err != nil {
		h.logger.Printf("view wait: %v", err)
		h.renderError(w, http.StatusGatewayTimeout, "The request was cancelled before the data arrived.")
		return true
	}
	if state.Status == view.StatusError {
		h.renderError(w, http.StatusBadGateway, state.Err)
		return true
	}
	return false
}

func (h *Handler) renderError(w http.ResponseWriter, status int, msg string) {
	h.render(w, status, "error.html", page{Title: "Error", Data: msg})
}

func (h *Handler) usersPage(w http.ResponseWriter, r *http.Request) {
	users := h.newUsers()
	defer users.Unmount()

	state, err := mountAndWait(r.Context(), users.Collection)
	if loadFailed(h, w, state, err) {
		return
	}
	h.render(w, http.StatusOK, "users.html", page{Title: "Users", Nav: "users", Data: view.BuildUsers(state.Data)})
}

// canEditUsers renders 401/403 and reports false for visitors whose token
// does not grant users:write.
func (h *Handler) canEditUsers(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		h.renderError(w, http.StatusUnauthorized, "Sign in to edit users.")
		return false
	}
	if !claims.HasScope(auth.ScopeUsersWrite) {
		h.renderError(w, http.StatusForbidden, "Your account is not allowed to edit users.")
		return false
	}
	return true
}

func (h *Handler) editUserPage(w http.ResponseWriter, r *http.Request) {
	if !h.canEditUsers(w, r) {
		return
	}
	users := h.newUsers()
	defer users.Unmount()

	state, err := mountAndWait(r.Context(), users.Collection)
	if loadFailed(h, w, state, err) {
		return
	}
	user, ok := users.FindUser(domain.ID(r.PathValue("id")))
	if !ok {
		h.renderError(w, http.StatusNotFound, "User not found")
		return
	}
	users.BeginEdit(user)
	h.renderEdit(w, r, http.StatusOK, user, users.Edit())
}

func (h *Handler) saveUserForm(w http.ResponseWriter, r *http.Request) {
	if !h.canEditUsers(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, http.StatusBadRequest, "Unable to read the submitted form.")
		return
	}
	form := domain.UserUpdate{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Team:  r.PostFormValue("team"),
	}

	users := h.newUsers()
	defer users.Unmount()

	state, err := mountAndWait(r.Context(), users.Collection)
	if loadFailed(h, w, state, err) {
		return
	}

	id := domain.ID(r.PathValue("id"))
	if _, err := h.saveUser(r.Context(), users, id, form); err != nil {
		if errors.Is(err, errUserNotFound) {
			h.renderError(w, http.StatusNotFound, "User not found")
			return
		}
		selected, _ := users.FindUser(id)
		h.renderEdit(w, r, http.StatusBadRequest, selected, users.Edit())
		return
	}

	h.render(w, http.StatusOK, "users.html", page{
		Title:   "Users",
		Nav:     "users",
		Flash:   savedFlash,
		Refresh: refreshAfter(h.closeDelay, "/users"),
		Data:    view.BuildUsers(users.State().Data),
	})
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, status int, user domain.User, edit view.EditState) {
	h.render(w, status, "user_edit.html", page{
		Title:     "Edit " + user.Name,
		Nav:       "users",
		CSRFField: csrf.TemplateField(r),
		Data:      editPage{User: user, Edit: edit, Teams: domain.TeamNames},
	})
}

func (h *Handler) teamsPage(w http.ResponseWriter, r *http.Request) {
	teams := view.NewTeams(h.backend)
	defer teams.Unmount()

	state, err := mountAndWait(r.Context(), teams)
	if loadFailed(h, w, state, err) {
		return
	}
	h.render(w, http.StatusOK, "teams.html", page{Title: "Teams", Nav: "teams", Data: view.BuildTeams(state.Data)})
}

func (h *Handler) activitiesPage(w http.ResponseWriter, r *http.Request) {
	activities := view.NewActivities(h.backend)
	defer activities.Unmount()

	state, err := mountAndWait(r.Context(), activities)
	if loadFailed(h, w, state, err) {
		return
	}
	data := view.BuildActivities(state.Data, r.URL.Query().Get("type"))
	h.render(w, http.StatusOK, "activities.html", page{Title: "Activities", Nav: "activities", Data: data})
}

func (h *Handler) leaderboardPage(w http.ResponseWriter, r *http.Request) {
	board := view.NewLeaderboard(h.backend)
	defer board.Unmount()

	state, err := mountAndWait(r.Context(), board)
	if loadFailed(h, w, state, err) {
		return
	}
	h.render(w, http.StatusOK, "leaderboard.html", page{Title: "Leaderboard", Nav: "leaderboard", Data: view.BuildLeaderboard(state.Data)})
}

func (h *Handler) workoutsPage(w http.ResponseWriter, r *http.Request) {
	workouts := view.NewWorkouts(h.backend)
	defer workouts.Unmount()

	state, err := mountAndWait(r.Context(), workouts)
	if loadFailed(h, w, state, err) {
		return
	}
	h.render(w, http.StatusOK, "workouts.html", page{Title: "Workouts", Nav: "workouts", Data: view.BuildWorkouts(state.Data)})
}

func (h *Handler) workoutPage(w http.ResponseWriter, r *http.Request) {
	workouts := view.NewWorkouts(h.backend)
	defer workouts.Unmount()

	state, err := mountAndWait(r.Context(), workouts)
	if loadFailed(h, w, state, err) {
		return
	}
	card, ok := view.FindWorkout(state.Data, domain.ID(r.PathValue("id")))
	if !ok {
		h.renderError(w, http.StatusNotFound, "Workout not found")
		return
	}
	h.render(w, http.StatusOK, "workout.html", page{Title: card.Name, Nav: "workouts", Data: card})
}
