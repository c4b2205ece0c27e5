package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/octofit/internal/domain"
)

func TestStoreNotifiesOnChangeOnly(t *testing.T) {
	store := NewStore(0)
	var seen []int
	unsubscribe := store.Subscribe(func(v int) { seen = append(seen, v) })

	require.True(t, store.Update(func(v *int) bool { *v = 1; return true }))
	require.False(t, store.Update(func(v *int) bool { return false }))
	unsubscribe()
	store.Update(func(v *int) bool { *v = 2; return true })

	require.Equal(t, []int{1}, seen)
	require.Equal(t, 2, store.Get())

	store.Close()
	require.False(t, store.Update(func(v *int) bool { *v = 3; return true }))
	require.Equal(t, 2, store.Get())
}

func TestCollectionLoadsOnMount(t *testing.T) {
	c := NewCollection("workouts", func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	require.Equal(t, StatusLoading, c.State().Status)

	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, StatusReady, state.Status)
	require.Equal(t, []string{"a", "b"}, state.Data)
	require.Empty(t, state.Err)
}

func TestCollectionLoadError(t *testing.T) {
	c := NewCollection("workouts", func(context.Context) ([]string, error) {
		return nil, errors.New("Failed to fetch workouts")
	})
	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, StatusError, state.Status)
	require.Equal(t, "Failed to fetch workouts", state.Err)
}

func TestCollectionHangStaysLoadingWithoutDuplicates(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCollection("activities", func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, ctx.Err()
	})
	defer close(release)

	c.Mount(context.Background())
	c.Mount(context.Background())
	require.False(t, c.Reload())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	state, err := c.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StatusLoading, state.Status)
	require.Equal(t, int32(1), calls.Load())

	c.Unmount()
	require.Equal(t, StatusLoading, c.State().Status)
}

func TestCollectionUnmountIgnoresLateResult(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	c := NewCollection("leaderboard", func(context.Context) ([]string, error) {
		defer close(done)
		<-release
		return []string{"late"}, nil
	})

	var notified atomic.Int32
	c.Subscribe(func(State[[]string]) { notified.Add(1) })
	c.Mount(context.Background())

	waitErr := make(chan error, 1)
	go func() {
		_, err := c.Wait(context.Background())
		waitErr <- err
	}()

	c.Unmount()
	require.ErrorIs(t, <-waitErr, ErrUnmounted)

	close(release)
	<-done
	require.Equal(t, StatusLoading, c.State().Status)
	require.Nil(t, c.State().Data)
	require.Zero(t, notified.Load())
}

func TestCollectionReloadKeepsData(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{}, 1)
	c := NewCollection("users", func(context.Context) (int32, error) {
		n := calls.Add(1)
		if n > 1 {
			<-gate
		}
		return n, nil
	})
	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, int32(1), state.Data)

	require.True(t, c.Reload())
	require.False(t, c.Reload())
	state = c.State()
	require.True(t, state.Refreshing)
	require.Equal(t, StatusReady, state.Status)
	require.Equal(t, int32(1), state.Data)

	gate <- struct{}{}
	state, err = c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.False(t, state.Refreshing)
	require.Equal(t, int32(2), state.Data)
	require.Equal(t, int32(2), calls.Load())
}

func TestCollectionRefetchQueuesBehindInflightFetch(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{}, 2)
	c := NewCollection("users", func(context.Context) (int32, error) {
		<-gate
		return calls.Add(1), nil
	})
	c.Mount(context.Background())
	defer c.Unmount()

	require.True(t, c.refetch())
	require.False(t, c.Reload())
	gate <- struct{}{}
	gate <- struct{}{}

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.False(t, state.Refreshing)
	require.Equal(t, int32(2), state.Data)
	require.Equal(t, int32(2), calls.Load())
}

type teamsStub struct {
	teams    []domain.Team
	users    []domain.User
	teamsErr error
	usersErr error
}

func (s teamsStub) ListTeams(context.Context) ([]domain.Team, error) {
	return s.teams, s.teamsErr
}

func (s teamsStub) ListUsers(ctx context.Context) ([]domain.User, error) {
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.users, nil
}

func TestTeamsJoinSucceeds(t *testing.T) {
	src := teamsStub{
		teams: []domain.Team{{ID: "1", Name: domain.TeamMarvel}, {ID: "2", Name: domain.TeamDC}},
		users: []domain.User{
			{Name: "Tony", Team: domain.TeamMarvel},
			{Name: "Bruce", Team: domain.TeamDC},
			{Name: "Clark", Team: domain.TeamDC},
		},
	}
	c := NewTeams(src)
	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, StatusReady, state.Status)

	page := BuildTeams(state.Data)
	require.Equal(t, 2, page.Count)
	require.Equal(t, 1, page.Teams[0].MemberCount)
	require.Equal(t, "Member", page.Teams[0].MemberLabel)
	require.Equal(t, StyleDanger, page.Teams[0].Style)
	require.Equal(t, 2, page.Teams[1].MemberCount)
	require.Equal(t, "Members", page.Teams[1].MemberLabel)
	require.Equal(t, StylePrimary, page.Teams[1].Style)
}

func TestTeamsJoinFailsWhole(t *testing.T) {
	src := teamsStub{
		teams:    []domain.Team{{ID: "1", Name: domain.TeamMarvel}},
		usersErr: errors.New("Failed to fetch users"),
	}
	c := NewTeams(src)
	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, StatusError, state.Status)
	require.Equal(t, "Failed to fetch users", state.Err)
	require.Nil(t, state.Data.Teams)
}

type rosterStub struct {
	mu    sync.Mutex
	loads int
}

func (s *rosterStub) ListTeams(context.Context) ([]domain.Team, error) {
	return []domain.Team{{ID: "1", Name: domain.TeamMarvel}, {ID: "2", Name: domain.TeamDC}}, nil
}

// ListUsers moves Tony to Team DC from the second load on.
func (s *rosterStub) ListUsers(context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	tony := domain.User{Name: "Tony", Team: domain.TeamMarvel}
	if s.loads > 1 {
		tony.Team = domain.TeamDC
	}
	return []domain.User{tony, {Name: "Clark", Team: domain.TeamDC}}, nil
}

func TestTeamsMemberCountFollowsReload(t *testing.T) {
	c := NewTeams(&rosterStub{})
	c.Mount(context.Background())
	defer c.Unmount()

	state, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	page := BuildTeams(state.Data)
	require.Equal(t, 1, page.Teams[0].MemberCount)
	require.Equal(t, 1, page.Teams[1].MemberCount)

	require.True(t, c.Reload())
	state, err = c.Wait(waitCtx(t))
	require.NoError(t, err)
	page = BuildTeams(state.Data)
	require.Equal(t, 0, page.Teams[0].MemberCount)
	require.Equal(t, "Members", page.Teams[0].MemberLabel)
	require.Equal(t, 2, page.Teams[1].MemberCount)
}

func TestSubscribersSeeTransitions(t *testing.T) {
	c := NewCollection("workouts", func(context.Context) (string, error) { return "ok", nil })
	var (
		mu       sync.Mutex
		statuses []Status
	)
	c.Subscribe(func(s State[string]) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	})
	c.Mount(context.Background())
	defer c.Unmount()

	_, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Status{StatusReady}, statuses)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
