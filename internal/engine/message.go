package engine

import (
	"fmt"
	"strings"

	"github.com/EryGltkn/CN-termproject/internal/domain"
)

// Message is an outbound wire message. The engine always works with these
// tagged variants; Render is the single place the legacy plain-text format
// is produced.
type Message interface {
	Render() string
}

// Idle is sent to a participant right after a successful handshake.
type Idle struct{}

func (Idle) Render() string {
	return "Waiting for the quiz to start...\n"
}

// QuestionAnnounce opens a round: the numbered prompt, the four options and
// the answer window length.
type QuestionAnnounce struct {
	Index    int // 1-based
	Question domain.Question
	Seconds  int
}

func (m QuestionAnnounce) Render() string {
	q := m.Question
	return fmt.Sprintf("\nQuestion %d: %s\nA: %s\nB: %s\nC: %s\nD: %s\nYou have %d seconds to answer.",
		m.Index, q.Prompt, q.A, q.B, q.C, q.D, m.Seconds)
}

// RoundResult is the graded outcome for one participant in one round.
type RoundResult struct {
	Nickname     string
	Answer       domain.Answer
	Correct      bool
	CorrectLabel string
}

// Feedback closes a round with one line per graded participant.
type Feedback struct {
	Results []RoundResult
}

func (m Feedback) Render() string {
	lines := make([]string, 0, len(m.Results))
	for _, r := range m.Results {
		if r.Correct {
			lines = append(lines, fmt.Sprintf("%s got it right!", r.Nickname))
		} else {
			lines = append(lines, fmt.Sprintf("%s got it wrong. Correct was %s.", r.Nickname, r.CorrectLabel))
		}
	}
	return "\n" + strings.Join(lines, "\n")
}

// FinalScores reports every remaining participant's total at session end.
type FinalScores struct {
	Entries []domain.SnapshotEntry
}

func (m FinalScores) Render() string {
	var b strings.Builder
	b.WriteString("\nFinal Scores:\n")
	lines := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		lines = append(lines, fmt.Sprintf("%s: %d", e.Nickname, e.Score))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// WinnerAnnounce names every participant tied on the winning score.
type WinnerAnnounce struct {
	Names []string
}

func (m WinnerAnnounce) Render() string {
	return "\nWinner(s): " + strings.Join(m.Names, ", ")
}

// NoWinner is sent when the maximum final score is zero.
type NoWinner struct{}

func (NoWinner) Render() string {
	return "\nNo winner this round."
}
