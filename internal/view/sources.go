package view

import (
	"context"

	"golang.org/x/sync/errgroup"

	"example.com/octofit/internal/domain"
)

// ActivitySource lists activities.
type ActivitySource interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)
}

// TeamSource lists teams and the users needed for member counts.
type TeamSource interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// LeaderboardSource lists ranked entries.
type LeaderboardSource interface {
	ListLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// WorkoutSource lists workouts.
type WorkoutSource interface {
	ListWorkouts(ctx context.Context) ([]domain.Workout, error)
}

// UserSource lists and updates users.
type UserSource interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id domain.ID, update domain.UserUpdate) (*domain.User, error)
}

// TeamsData is the joined payload behind the teams page.
type TeamsData struct {
	Teams []domain.Team
	Users []domain.User
}

// NewActivities builds the activity log viewer.
func NewActivities(src ActivitySource) *Collection[[]domain.Activity] {
	return NewCollection("activities", src.ListActivities)
}

// NewTeams builds the teams viewer. Teams and users are fetched concurrently
// and the first failure cancels the other request; there is no partial result.
func NewTeams(src TeamSource) *Collection[TeamsData] {
	return NewCollection("teams", func(ctx context.Context) (TeamsData, error) {
		var data TeamsData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			teams, err := src.ListTeams(gctx)
			data.Teams = teams
			return err
		})
		g.Go(func() error {
			users, err := src.ListUsers(gctx)
			data.Users = users
			return err
		})
		if err := g.Wait(); err != nil {
			return TeamsData{}, err
		}
		return data, nil
	})
}

// NewLeaderboard builds the leaderboard viewer.
func NewLeaderboard(src LeaderboardSource) *Collection[[]domain.LeaderboardEntry] {
	return NewCollection("leaderboard", src.ListLeaderboard)
}

// NewWorkouts builds the workout catalogue viewer.
func NewWorkouts(src WorkoutSource) *Collection[[]domain.Workout] {
	return NewCollection("workouts", src.ListWorkouts)
}
