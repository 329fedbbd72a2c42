package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/EryGltkn/CN-termproject/internal/domain"
)

func writeBank(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp bank: %v", err)
	}
	return path
}

func TestLoadBank(t *testing.T) {
	path := writeBank(t, `[
		{"question": "What is 2 + 2?", "A": "3", "B": "4", "C": "5", "D": "6", "answer": "B"}
	]`)

	bank, err := NewBankLoader(path).LoadBank(context.Background(), "default")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bank.ID != "default" || len(bank.Questions) != 1 {
		t.Fatalf("unexpected bank: %+v", bank)
	}
	q := bank.Questions[0]
	if q.Prompt != "What is 2 + 2?" || q.Answer != "B" || q.Option("B") != "4" {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestLoadBankRejectsBadLabel(t *testing.T) {
	path := writeBank(t, `[
		{"question": "q", "A": "1", "B": "2", "C": "3", "D": "4", "answer": "X"}
	]`)
	if _, err := NewBankLoader(path).LoadBank(context.Background(), "default"); !errors.Is(err, domain.ErrBadAnswerLabel) {
		t.Fatalf("expected ErrBadAnswerLabel, got %v", err)
	}
}

func TestLoadBankRejectsEmpty(t *testing.T) {
	path := writeBank(t, `[]`)
	if _, err := NewBankLoader(path).LoadBank(context.Background(), "default"); !errors.Is(err, domain.ErrEmptyBank) {
		t.Fatalf("expected ErrEmptyBank, got %v", err)
	}
}

func TestLoadBankMissingFile(t *testing.T) {
	if _, err := NewBankLoader("/nonexistent/questions.json").LoadBank(context.Background(), "default"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
