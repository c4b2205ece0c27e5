package view

import "example.com/octofit/internal/domain"

// Style names understood by the templates.
const (
	StyleDanger    = "danger"
	StylePrimary   = "primary"
	StyleSuccess   = "success"
	StyleWarning   = "warning"
	StyleSecondary = "secondary"
)

// TeamStyle picks the accent for a team name.
func TeamStyle(name string) string {
	if name == domain.TeamMarvel {
		return StyleDanger
	}
	return StylePrimary
}

// TeamCard is one team with its member count.
type TeamCard struct {
	domain.Team
	MemberCount int    `json:"member_count"`
	MemberLabel string `json:"member_label"`
	Style       string `json:"style"`
}

// TeamsView is the rendered teams page.
type TeamsView struct {
	Count int        `json:"count"`
	Teams []TeamCard `json:"teams"`
}

// MemberCount counts users whose team matches the team name exactly.
func MemberCount(team domain.Team, users []domain.User) int {
	count := 0
	for _, u := range users {
		if u.Team == team.Name {
			count++
		}
	}
	return count
}

// BuildTeams joins teams with users.
func BuildTeams(data TeamsData) TeamsView {
	cards := make([]TeamCard, 0, len(data.Teams))
	for _, team := range data.Teams {
		count := MemberCount(team, data.Users)
		label := "Members"
		if count == 1 {
			label = "Member"
		}
		cards = append(cards, TeamCard{
			Team:        team,
			MemberCount: count,
			MemberLabel: label,
			Style:       TeamStyle(team.Name),
		})
	}
	return TeamsView{Count: len(cards), Teams: cards}
}
