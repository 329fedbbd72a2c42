package domain

import (
	"fmt"
	"strings"
	"time"
)

// Answer is a participant's decoded answer for one round.
type Answer string

const (
	AnswerA Answer = "A"
	AnswerB Answer = "B"
	AnswerC Answer = "C"
	AnswerD Answer = "D"
	// AnswerNone covers timeouts, disconnects and malformed input alike.
	AnswerNone Answer = "none"
)

// OptionLabels lists the four answer labels in wire order.
var OptionLabels = [4]string{"A", "B", "C", "D"}

// ParseAnswer decodes a raw client line into an Answer. The payload is
// trimmed and upper-cased; anything other than A-D maps to AnswerNone.
func ParseAnswer(raw string) Answer {
	a := Answer(strings.ToUpper(strings.TrimSpace(raw)))
	switch a {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return a
	default:
		return AnswerNone
	}
}

// Question models one multiple-choice question with a single correct label.
// JSON tags match the legacy questions.json file format.
type Question struct {
	Prompt string `json:"question"`
	A      string `json:"A"`
	B      string `json:"B"`
	C      string `json:"C"`
	D      string `json:"D"`
	Answer string `json:"answer"`
}

// Option returns the option text for a label, or "" for an unknown label.
func (q Question) Option(label string) string {
	switch label {
	case "A":
		return q.A
	case "B":
		return q.B
	case "C":
		return q.C
	case "D":
		return q.D
	}
	return ""
}

// Validate checks that all four options are present and the correct label
// names one of them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %q: %w", q.Prompt, ErrMissingPrompt)
	}
	for _, label := range OptionLabels {
		if strings.TrimSpace(q.Option(label)) == "" {
			return fmt.Errorf("question %q missing option %s: %w", q.Prompt, label, ErrMissingOption)
		}
	}
	if q.Option(q.Answer) == "" {
		return fmt.Errorf("question %q has correct label %q: %w", q.Prompt, q.Answer, ErrBadAnswerLabel)
	}
	return nil
}

// Bank is an ordered, immutable sequence of questions for one session.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Validate rejects empty banks and banks with malformed questions.
func (b Bank) Validate() error {
	if len(b.Questions) == 0 {
		return ErrEmptyBank
	}
	for _, q := range b.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotEntry is one (nickname, score) pair in a presentation snapshot.
type SnapshotEntry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// Snapshot is the presentation-facing view of the session: the current
// scoreboard plus whether a quiz is running. It is produced as a single
// atomic read of the session state.
type Snapshot struct {
	Entries   []SnapshotEntry `json:"entries"`
	Running   bool            `json:"running"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
