package view

import (
	"strings"

	"example.com/octofit/internal/domain"
)

// DifficultyBadge maps a workout difficulty to a severity style.
func DifficultyBadge(difficulty string) string {
	switch strings.ToLower(difficulty) {
	case "easy":
		return StyleSuccess
	case "medium":
		return StyleWarning
	case "hard":
		return StyleDanger
	default:
		return StyleSecondary
	}
}

// WorkoutCard is a workout with its difficulty style.
type WorkoutCard struct {
	domain.Workout
	Badge string `json:"badge"`
}

// WorkoutsView is the rendered workout catalogue.
type WorkoutsView struct {
	Count    int           `json:"count"`
	Workouts []WorkoutCard `json:"workouts"`
}

// BuildWorkouts decorates each workout with its badge.
func BuildWorkouts(workouts []domain.Workout) WorkoutsView {
	cards := make([]WorkoutCard, 0, len(workouts))
	for _, w := range workouts {
		cards = append(cards, WorkoutCard{Workout: w, Badge: DifficultyBadge(w.Difficulty)})
	}
	return WorkoutsView{Count: len(cards), Workouts: cards}
}

// FindWorkout looks a workout up by id.
func FindWorkout(workouts []domain.Workout, id domain.ID) (WorkoutCard, bool) {
	for _, w := range workouts {
		if w.ID == id {
			return WorkoutCard{Workout: w, Badge: DifficultyBadge(w.Difficulty)}, true
		}
	}
	return WorkoutCard{}, false
}
