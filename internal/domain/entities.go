// Package domain defines the records served by the OctoFit REST API.
package domain

import (
	"strings"
	"time"
)

// Teams a user can belong to.
const (
	TeamMarvel = "Team Marvel"
	TeamDC     = "Team DC"
)

// TeamNames lists the selectable teams in display order.
var TeamNames = []string{TeamMarvel, TeamDC}

// User is a registered athlete.
type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Team      string `json:"team"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Handle returns the local part of the user's email address.
func (u User) Handle() string {
	handle, _, _ := strings.Cut(u.Email, "@")
	return handle
}

// UserUpdate is the full-replace body accepted by PUT /api/users/{id}/.
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

// Team groups users competing together.
type Team struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Activity is a single logged workout session.
type Activity struct {
	ID           ID     `json:"id"`
	UserName     string `json:"user_name"`
	ActivityType string `json:"activity_type"`
	Duration     int    `json:"duration"`
	Calories     int    `json:"calories"`
	Date         string `json:"date,omitempty"`
}

// LeaderboardEntry is one ranked athlete. Entries arrive sorted by rank.
type LeaderboardEntry struct {
	ID              ID     `json:"id"`
	Rank            int    `json:"rank"`
	UserName        string `json:"user_name"`
	Team            string `json:"team"`
	TotalCalories   int    `json:"total_calories"`
	TotalActivities int    `json:"total_activities"`
}

// Workout is a suggested training program.
type Workout struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Difficulty       string `json:"difficulty"`
	Duration         int    `json:"duration"`
	CaloriesEstimate int    `json:"calories_estimate"`
}

// ParseTimestamp reads the date formats emitted by the backend. The zero time
// is returned when the value is empty or unrecognised.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
