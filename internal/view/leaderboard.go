package view

import (
	"math"
	"strconv"

	"example.com/octofit/internal/domain"
)

// PodiumSize is the number of leaders highlighted above the rankings.
const PodiumSize = 3

// Badge is a rank marker: a medal for the podium, the number otherwise.
type Badge struct {
	Icon  string `json:"icon"`
	Class string `json:"class"`
	Medal string `json:"medal,omitempty"`
}

// RankBadge maps 1, 2 and 3 to gold, silver and bronze.
func RankBadge(rank int) Badge {
	switch rank {
	case 1:
		return Badge{Icon: "🥇", Class: "bg-warning text-dark", Medal: "gold"}
	case 2:
		return Badge{Icon: "🥈", Class: "bg-secondary text-white", Medal: "silver"}
	case 3:
		return Badge{Icon: "🥉", Class: "bg-danger text-white", Medal: "bronze"}
	default:
		return Badge{Icon: strconv.Itoa(rank), Class: "bg-light text-dark"}
	}
}

// Average returns calories per activity rounded half up. It reports false
// when the entry has no activities.
func Average(e domain.LeaderboardEntry) (int, bool) {
	if e.TotalActivities == 0 {
		return 0, false
	}
	return int(math.Floor(float64(e.TotalCalories)/float64(e.TotalActivities) + 0.5)), true
}

// Podium returns the first PodiumSize entries as served; they are not re-sorted.
func Podium(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	if len(entries) > PodiumSize {
		return entries[:PodiumSize]
	}
	return entries
}

// LeaderboardRow is one ranked entry with its derived values.
type LeaderboardRow struct {
	domain.LeaderboardEntry
	Badge     Badge  `json:"badge"`
	TeamStyle string `json:"team_style"`
	Average   *int   `json:"average"`
	AvgLabel  string `json:"average_label"`
}

// PodiumCard is a podium slot; Border follows the slot, not the rank.
type PodiumCard struct {
	LeaderboardRow
	Border string `json:"border"`
}

// LeaderboardView is the rendered leaderboard.
type LeaderboardView struct {
	Count  int              `json:"count"`
	Podium []PodiumCard     `json:"podium"`
	Rows   []LeaderboardRow `json:"rows"`
}

var podiumBorders = [PodiumSize]string{StyleWarning, StyleSecondary, StyleDanger}

// BuildLeaderboard derives the podium and the full rankings.
func BuildLeaderboard(entries []domain.LeaderboardEntry) LeaderboardView {
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboardRow(e))
	}
	podium := make([]PodiumCard, 0, PodiumSize)
	for i, e := range Podium(entries) {
		podium = append(podium, PodiumCard{LeaderboardRow: leaderboardRow(e), Border: podiumBorders[i]})
	}
	return LeaderboardView{Count: len(entries), Podium: podium, Rows: rows}
}

func leaderboardRow(e domain.LeaderboardEntry) LeaderboardRow {
	row := LeaderboardRow{
		LeaderboardEntry: e,
		Badge:            RankBadge(e.Rank),
		TeamStyle:        TeamStyle(e.Team),
		AvgLabel:         "N/A",
	}
	if avg, ok := Average(e); ok {
		row.Average = &avg
		row.AvgLabel = strconv.Itoa(avg) + " cal"
	}
	return row
}
