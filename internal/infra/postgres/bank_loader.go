package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads question-bank JSONB from Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("load question bank: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.Bank{}, fmt.Errorf("unmarshal question bank: %w", err)
	}
	bank := domain.Bank{ID: bankID, Questions: questions}
	if err := bank.Validate(); err != nil {
		return domain.Bank{}, fmt.Errorf("validate question bank: %w", err)
	}
	return bank, nil
}
