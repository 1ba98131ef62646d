package corrector

import (
	"context"
	"errors"
	"testing"

	"github.com/vintr-dev/tapscore/internal/noise"
)

type fixedCorrector struct {
	Base
	word   string
	memory int64
}

func (f fixedCorrector) AutoCorrect(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return []string{f.word}, nil
}

func (f fixedCorrector) MemoryUsage() int64 { return f.memory }

type failingCorrector struct{ Base }

func (failingCorrector) AutoCorrect(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return nil, errors.New("engine unavailable")
}

func TestBaseReturnsNoCandidates(t *testing.T) {
	var c Corrector = Base{}
	preds, err := c.PredictNextWord(context.Background(), "the quick ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 0 {
		t.Fatalf("expected no candidates, got %v", preds)
	}
}

func TestProfiledMeasuresRuntime(t *testing.T) {
	p := Profile(fixedCorrector{word: "hello", memory: 1024})
	preds, memory, runtime := p.AutoCorrect(context.Background(), "", nil, "hllo")
	if len(preds) != 1 || preds[0] != "hello" {
		t.Fatalf("unexpected candidates %v", preds)
	}
	if memory != 1024 {
		t.Fatalf("expected reported memory, got %d", memory)
	}
	if runtime < 0 {
		t.Fatalf("expected a non-negative runtime, got %d", runtime)
	}
}

func TestProfiledWithoutMemoryReporter(t *testing.T) {
	p := Profile(Base{})
	_, memory, runtime := p.PredictNextWord(context.Background(), "")
	if memory != -1 {
		t.Fatalf("expected memory sentinel -1, got %d", memory)
	}
	if runtime < 0 {
		t.Fatalf("expected a non-negative runtime, got %d", runtime)
	}
}

func TestProfiledFailedCall(t *testing.T) {
	p := Profile(failingCorrector{})
	preds, memory, runtime := p.AutoCorrect(context.Background(), "", nil, "x")
	if len(preds) != 0 {
		t.Fatalf("failed calls must yield no candidates, got %v", preds)
	}
	if memory != -1 || runtime != -1 {
		t.Fatalf("failed calls must report negative measurements, got %d %d", memory, runtime)
	}
}
