package view

import (
	"unicode"
	"unicode/utf8"

	"example.com/octofit/internal/domain"
)

// FilterAll is the sentinel filter that keeps every activity.
const FilterAll = "all"

// ActivityRowLimit caps the rows rendered on the activity log.
const ActivityRowLimit = 50

// ActivitiesView is the rendered activity log.
type ActivitiesView struct {
	Types    []string          `json:"types"`
	Filter   string            `json:"filter"`
	Count    int               `json:"count"`
	Rows     []domain.Activity `json:"rows"`
	Overflow bool              `json:"overflow"`
}

// DistinctTypes returns "all" followed by each activity type in first-seen order.
func DistinctTypes(activities []domain.Activity) []string {
	types := []string{FilterAll}
	seen := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		if _, ok := seen[a.ActivityType]; ok {
			continue
		}
		seen[a.ActivityType] = struct{}{}
		types = append(types, a.ActivityType)
	}
	return types
}

// FilterActivities keeps the activities whose type equals filter. "all" and
// the empty filter return the input unchanged.
func FilterActivities(activities []domain.Activity, filter string) []domain.Activity {
	if filter == "" || filter == FilterAll {
		return activities
	}
	out := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a.ActivityType == filter {
			out = append(out, a)
		}
	}
	return out
}

// BuildActivities derives the activity log for the given filter. Count
// reflects every match; Rows holds at most ActivityRowLimit of them.
func BuildActivities(activities []domain.Activity, filter string) ActivitiesView {
	if filter == "" {
		filter = FilterAll
	}
	filtered := FilterActivities(activities, filter)
	rows := filtered
	if len(rows) > ActivityRowLimit {
		rows = rows[:ActivityRowLimit]
	}
	if rows == nil {
		rows = []domain.Activity{}
	}
	return ActivitiesView{
		Types:    DistinctTypes(activities),
		Filter:   filter,
		Count:    len(filtered),
		Rows:     rows,
		Overflow: len(filtered) > ActivityRowLimit,
	}
}

// TypeLabel upper-cases the first letter of an activity type for buttons.
func TypeLabel(t string) string {
	r, size := utf8.DecodeRuneInString(t)
	if r == utf8.RuneError {
		return t
	}
	return string(unicode.ToUpper(r)) + t[size:]
}
