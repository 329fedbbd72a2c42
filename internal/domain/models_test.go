package domain

import (
	"errors"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want Answer
	}{
		{"A", AnswerA},
		{"b", AnswerB},
		{"  c \n", AnswerC},
		{"d\r\n", AnswerD},
		{"", AnswerNone},
		{"E", AnswerNone},
		{"AB", AnswerNone},
		{"yes", AnswerNone},
	}
	for _, c := range cases {
		if got := ParseAnswer(c.in); got != c.want {
			t.Errorf("ParseAnswer(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestQuestionValidate(t *testing.T) {
	q := Question{Prompt: "p", A: "1", B: "2", C: "3", D: "4", Answer: "C"}
	if err := q.Validate(); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	bad := q
	bad.Answer = "E"
	if err := bad.Validate(); !errors.Is(err, ErrBadAnswerLabel) {
		t.Fatalf("expected ErrBadAnswerLabel, got %v", err)
	}

	bad = q
	bad.C = ""
	if err := bad.Validate(); !errors.Is(err, ErrMissingOption) {
		t.Fatalf("expected ErrMissingOption, got %v", err)
	}

	bad = q
	bad.Prompt = "  "
	if err := bad.Validate(); !errors.Is(err, ErrMissingPrompt) {
		t.Fatalf("expected ErrMissingPrompt, got %v", err)
	}
}

func TestBankValidate(t *testing.T) {
	if err := (Bank{ID: "b"}).Validate(); !errors.Is(err, ErrEmptyBank) {
		t.Fatalf("expected ErrEmptyBank, got %v", err)
	}
	bank := Bank{ID: "b", Questions: []Question{
		{Prompt: "p", A: "1", B: "2", C: "3", D: "4", Answer: "A"},
	}}
	if err := bank.Validate(); err != nil {
		t.Fatalf("valid bank rejected: %v", err)
	}
}
