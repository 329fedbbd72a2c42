package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/EryGltkn/CN-termproject/internal/domain"
)

// BankLoader reads a question bank from a JSON file on disk. The file is an
// array of records in the legacy format:
//
//	[{"question": "...", "A": "...", "B": "...", "C": "...", "D": "...", "answer": "B"}]
type BankLoader struct {
	path string
}

func NewBankLoader(path string) *BankLoader {
	return &BankLoader{path: path}
}

func (l *BankLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("read question file: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return domain.Bank{}, fmt.Errorf("parse question file: %w", err)
	}
	bank := domain.Bank{ID: bankID, Questions: questions}
	if err := bank.Validate(); err != nil {
		return domain.Bank{}, fmt.Errorf("validate question file: %w", err)
	}
	return bank, nil
}
