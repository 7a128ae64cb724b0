// Package game holds the view-state vocabulary shared by the surface
// controllers: team identity, question targeting, bounded answer history and
// the notices surfaces raise for the operator.
package game

import (
	"time"

	"github.com/tablero-live/surfaces/pkg/wire"
)

type TeamID string

const (
	Team1 TeamID = "team1"
	Team2 TeamID = "team2"
)

func ParseTeamID(s string) (TeamID, bool) {
	switch s {
	case "team1":
		return Team1, true
	case "team2":
		return Team2, true
	default:
		return "", false
	}
}

// TargetTeam says which side may answer the current question.
type TargetTeam string

const (
	TargetTeam1 TargetTeam = "team1"
	TargetTeam2 TargetTeam = "team2"
	TargetBoth  TargetTeam = "both"
)

func ParseTargetTeam(s string) (TargetTeam, bool) {
	switch s {
	case "team1":
		return TargetTeam1, true
	case "team2":
		return TargetTeam2, true
	case "both":
		return TargetBoth, true
	default:
		return "", false
	}
}

// Eligible reports whether a team may answer a question targeted at t.
func (t TargetTeam) Eligible(id TeamID) bool {
	return t == TargetBoth || string(t) == string(id)
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient operator-visible line: local precondition rejections,
// server error statuses, confirmations.
type Notice struct {
	Level NoticeLevel
	Text  string
}

func SuccessNotice(text string) *Notice { return &Notice{Level: NoticeSuccess, Text: text} }
func ErrorNotice(text string) *Notice   { return &Notice{Level: NoticeError, Text: text} }

// Teams is the client-side copy of the per-team blocks from the last game
// message. Keys are team IDs.
type Teams map[string]wire.TeamInfo

// Team returns the block for id, zero-valued if the server has not sent one.
func (t Teams) Team(id TeamID) wire.TeamInfo {
	if t == nil {
		return wire.TeamInfo{}
	}
	return t[string(id)]
}

// Replace swaps in the teams block from a server message when present.
// Messages without a teams block leave the current copy untouched.
func (t Teams) Replace(src map[string]wire.TeamInfo) Teams {
	if src == nil {
		return t
	}
	out := make(Teams, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Stats are the derived scoreboard totals.
type Stats struct {
	TotalQuestions int
	TotalCorrect   int
	AccuracyPct    int
}

func DeriveStats(t Teams) Stats {
	t1 := t.Team(Team1)
	t2 := t.Team(Team2)
	total := t1.CorrectAnswers + t1.WrongAnswers + t2.CorrectAnswers + t2.WrongAnswers
	correct := t1.CorrectAnswers + t2.CorrectAnswers
	s := Stats{TotalQuestions: total, TotalCorrect: correct}
	if total > 0 {
		s.AccuracyPct = int(float64(correct)/float64(total)*100 + 0.5)
	}
	return s
}

// AnswerRecord is one line of the scoreboard answer history.
type AnswerRecord struct {
	Team    string
	Answer  string
	Correct bool
	Points  int
	At      time.Time
}

// History is a bounded answer log, newest first. Inserting past capacity
// evicts the oldest record so the buffer never exceeds its cap.
type History struct {
	limit int
	items []AnswerRecord
}

func NewHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) Add(r AnswerRecord) {
	h.items = append([]AnswerRecord{r}, h.items...)
	if len(h.items) > h.limit {
		h.items = h.items[:h.limit]
	}
}

func (h *History) Len() int { return len(h.items) }

// Records returns a copy, newest first.
func (h *History) Records() []AnswerRecord {
	out := make([]AnswerRecord, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Clear() { h.items = nil }

// Milestones are the scores that trigger a celebration on the public
// scoreboard.
var Milestones = []int{50, 100, 150, 200, 250}

// HitMilestone returns the milestone score reached by either team, or 0.
func HitMilestone(t Teams) int {
	for _, m := range Milestones {
		if t.Team(Team1).Score == m || t.Team(Team2).Score == m {
			return m
		}
	}
	return 0
}
