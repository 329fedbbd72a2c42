package redis

import (
	"context"
	"testing"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/EryGltkn/CN-termproject/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string]domain.Bank{
			"default": sampleBank(),
		}),
	}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "default")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank.Questions) != 1 || bank.Questions[0].Answer != "B" {
		t.Fatalf("unexpected bank: %+v", bank)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:bank:default") {
		t.Fatal("expected bank cached in redis")
	}

	// Second call should hit the cache intact, prompts included.
	bank, err = repo.GetBank(context.Background(), "default")
	if err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if bank.Questions[0].Prompt != "What is 2 + 2?" {
		t.Fatalf("cached bank lost its prompt: %+v", bank.Questions[0])
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "default",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", A: "3", B: "4", C: "5", D: "6", Answer: "B"},
		},
	}
}
