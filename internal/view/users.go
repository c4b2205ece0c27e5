package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/observability"
)

// DefaultCloseDelay is how long the edit surface stays open after a save.
const DefaultCloseDelay = time.Second

// Editable fields accepted by UpdateField.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldTeam  = "team"
)

var (
	// ErrNotEditing is returned by Save when no user is selected.
	ErrNotEditing = errors.New("no user selected for editing")
	// ErrUnknownField is returned by UpdateField for fields outside the edit buffer.
	ErrUnknownField = errors.New("unknown edit field")
	// ErrSaveInFlight is returned when Save is called while a save is pending.
	ErrSaveInFlight = errors.New("save already in progress")
)

// EditState is the observable state of the edit surface.
type EditState struct {
	Editing   bool
	Selected  *domain.User
	Form      domain.UserUpdate
	SaveError string
	Success   bool
	Saving    bool

	// gen increments on every open and close so stale completions can be dropped.
	gen uint64
}

// SavedUser describes a successful save.
type SavedUser struct {
	ID     domain.ID
	Update domain.UserUpdate
	User   *domain.User
}

// UsersView is the users collection with its edit workflow.
type UsersView struct {
	*Collection[[]domain.User]

	src        UserSource
	edit       *Store[EditState]
	closeDelay time.Duration
	onSaved    func(context.Context, SavedUser)

	mu         sync.Mutex
	closeTimer *time.Timer
}

// UsersOption configures a UsersView.
type UsersOption func(*UsersView)

// WithCloseDelay overrides DefaultCloseDelay. Zero or negative closes immediately.
func WithCloseDelay(d time.Duration) UsersOption {
	return func(v *UsersView) { v.closeDelay = d }
}

// WithOnSaved registers a hook run after every successful save.
func WithOnSaved(fn func(context.Context, SavedUser)) UsersOption {
	return func(v *UsersView) { v.onSaved = fn }
}

// NewUsers builds the users viewer.
func NewUsers(src UserSource, opts ...UsersOption) *UsersView {
	v := &UsersView{
		Collection: NewCollection("users", src.ListUsers),
		src:        src,
		edit:       NewStore(EditState{}),
		closeDelay: DefaultCloseDelay,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Edit returns the current edit state.
func (v *UsersView) Edit() EditState {
	return v.edit.Get()
}

// SubscribeEdit registers fn for edit state changes.
func (v *UsersView) SubscribeEdit(fn func(EditState)) func() {
	return v.edit.Subscribe(fn)
}

// FindUser looks a loaded user up by id.
func (v *UsersView) FindUser(id domain.ID) (domain.User, bool) {
	for _, u := range v.State().Data {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// BeginEdit opens the edit surface for user with the buffer pre-filled.
func (v *UsersView) BeginEdit(user domain.User) {
	v.stopCloseTimer()
	selected := user
	v.edit.Update(func(s *EditState) bool {
		*s = EditState{
			gen:      s.gen + 1,
			Editing:  true,
			Selected: &selected,
			Form:     domain.UserUpdate{Name: user.Name, Email: user.Email, Team: user.Team},
		}
		return true
	})
}

// UpdateField merges one value into the edit buffer.
func (v *UsersView) UpdateField(name, value string) error {
	var apply func(*domain.UserUpdate)
	switch name {
	case FieldName:
		apply = func(f *domain.UserUpdate) { f.Name = value }
	case FieldEmail:
		apply = func(f *domain.UserUpdate) { f.Email = value }
	case FieldTeam:
		apply = func(f *domain.UserUpdate) { f.Team = value }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	var err error
	v.edit.Update(func(s *EditState) bool {
		if !s.Editing {
			err = ErrNotEditing
			return false
		}
		apply(&s.Form)
		return true
	})
	return err
}

// Save sends the buffer as a full replace of the selected user. On success
// the collection is fetched once more, queued behind any fetch still running,
// and the surface closes after the close delay. On failure the error is kept
// on the surface with the buffer intact.
func (v *UsersView) Save(ctx context.Context) (*domain.User, error) {
	var (
		id   domain.ID
		form domain.UserUpdate
		gen  uint64
		err  error
	)
	v.edit.Update(func(s *EditState) bool {
		switch {
		case !s.Editing || s.Selected == nil:
			err = ErrNotEditing
			return false
		case s.Saving:
			err = ErrSaveInFlight
			return false
		}
		id, form, gen = s.Selected.ID, s.Form, s.gen
		s.Saving = true
		s.SaveError = ""
		s.Success = false
		return true
	})
	if err != nil {
		return nil, err
	}

	user, err := v.src.UpdateUser(ctx, id, form)
	if err != nil {
		v.edit.Update(func(s *EditState) bool {
			if s.gen != gen {
				return false
			}
			s.Saving = false
			s.SaveError = err.Error()
			return true
		})
		observability.RecordUserSave(observability.OutcomeFailure, time.Now())
		return nil, err
	}

	v.edit.Update(func(s *EditState) bool {
		if s.gen != gen {
			return false
		}
		s.Saving = false
		s.Success = true
		return true
	})
	// Only an unmounted view skips the refresh.
	v.refetch()
	v.scheduleClose(gen)
	observability.RecordUserSave(observability.OutcomeSuccess, time.Now())

	if v.onSaved != nil {
		v.onSaved(ctx, SavedUser{ID: id, Update: form, User: user})
	}
	return user, nil
}

// Cancel closes the edit surface without saving.
func (v *UsersView) Cancel() {
	v.stopCloseTimer()
	v.edit.Update(func(s *EditState) bool {
		if !s.Editing {
			return false
		}
		*s = EditState{gen: s.gen + 1}
		return true
	})
}

// DismissError clears the inline save error.
func (v *UsersView) DismissError() {
	v.edit.Update(func(s *EditState) bool {
		if s.SaveError == "" {
			return false
		}
		s.SaveError = ""
		return true
	})
}

// Unmount stops a pending close and tears down both stores.
func (v *UsersView) Unmount() {
	v.stopCloseTimer()
	v.edit.Close()
	v.Collection.Unmount()
}

func (v *UsersView) scheduleClose(gen uint64) {
	closeFn := func() {
		v.edit.Update(func(s *EditState) bool {
			if s.gen != gen {
				return false
			}
			*s = EditState{gen: s.gen + 1}
			return true
		})
	}
	if v.closeDelay <= 0 {
		closeFn()
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closeTimer != nil {
		v.closeTimer.Stop()
	}
	v.closeTimer = time.AfterFunc(v.closeDelay, closeFn)
}

func (v *UsersView) stopCloseTimer() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closeTimer != nil {
		v.closeTimer.Stop()
		v.closeTimer = nil
	}
}

// UserRow is one user with its display values.
type UserRow struct {
	domain.User
	Handle string `json:"handle"`
	Style  string `json:"style"`
}

// UsersPage is the rendered users list.
type UsersPage struct {
	Count int       `json:"count"`
	Users []UserRow `json:"users"`
}

// BuildUsers decorates each user with its handle and team style.
func BuildUsers(users []domain.User) UsersPage {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{User: u, Handle: u.Handle(), Style: TeamStyle(u.Team)})
	}
	return UsersPage{Count: len(rows), Users: rows}
}
