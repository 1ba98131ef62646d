// Package corrector defines the interface a text-input engine must
// implement to be evaluated.
package corrector

import (
	"context"
	"time"

	"github.com/vintr-dev/tapscore/internal/noise"
)

// Corrector is the engine under test. Every method receives the previously
// committed text and returns ranked candidates, best first.
//
// Keystroke slices may contain nil entries for characters that have no key
// on the default keyboard layer; implementations can use either the
// keystrokes or the plain string.
type Corrector interface {
	// AutoCorrect proposes corrections for a fully typed word.
	AutoCorrect(ctx context.Context, prev string, keystrokes []*noise.Keystroke, word string) ([]string, error)

	// AutoComplete proposes completions for a partially typed word.
	AutoComplete(ctx context.Context, prev string, keystrokes []*noise.Keystroke, partialWord string) ([]string, error)

	// ResolveSwipe proposes words matching a swipe gesture across the
	// keyboard.
	ResolveSwipe(ctx context.Context, prev string, gesture []noise.Keystroke) ([]string, error)

	// PredictNextWord proposes the next words likely to follow the
	// committed text.
	PredictNextWord(ctx context.Context, prev string) ([]string, error)
}

// Base is a no-op Corrector. Embed it to implement only the tasks an
// engine supports; unimplemented tasks return no candidates.
type Base struct{}

func (Base) AutoCorrect(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return nil, nil
}

func (Base) AutoComplete(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return nil, nil
}

func (Base) ResolveSwipe(context.Context, string, []noise.Keystroke) ([]string, error) {
	return nil, nil
}

func (Base) PredictNextWord(context.Context, string) ([]string, error) {
	return nil, nil
}

// MemoryReporter is implemented by correctors that can report the memory
// used by their last call, in bytes. Without it, profiled calls report -1
// and memory metrics are skipped.
type MemoryReporter interface {
	MemoryUsage() int64
}

// Profiled wraps every Corrector call with runtime (and, when available,
// memory) measurement.
type Profiled struct {
	c Corrector
}

// Profile wraps a corrector for profiled calls.
func Profile(c Corrector) *Profiled {
	return &Profiled{c: c}
}

func (p *Profiled) measure(start time.Time, err error) (memory, runtime int64) {
	if err != nil {
		return -1, -1
	}
	memory = int64(-1)
	if reporter, ok := p.c.(MemoryReporter); ok {
		memory = reporter.MemoryUsage()
	}
	return memory, time.Since(start).Nanoseconds()
}

// AutoCorrect calls the wrapped corrector and reports candidates, memory in
// bytes and runtime in nanoseconds. Failed calls yield no candidates and
// negative measurements.
func (p *Profiled) AutoCorrect(ctx context.Context, prev string, keystrokes []*noise.Keystroke, word string) ([]string, int64, int64) {
	start := time.Now()
	preds, err := p.c.AutoCorrect(ctx, prev, keystrokes, word)
	memory, runtime := p.measure(start, err)
	return preds, memory, runtime
}

// AutoComplete is the profiled version of Corrector.AutoComplete.
func (p *Profiled) AutoComplete(ctx context.Context, prev string, keystrokes []*noise.Keystroke, partialWord string) ([]string, int64, int64) {
	start := time.Now()
	preds, err := p.c.AutoComplete(ctx, prev, keystrokes, partialWord)
	memory, runtime := p.measure(start, err)
	return preds, memory, runtime
}

// ResolveSwipe is the profiled version of Corrector.ResolveSwipe.
func (p *Profiled) ResolveSwipe(ctx context.Context, prev string, gesture []noise.Keystroke) ([]string, int64, int64) {
	start := time.Now()
	preds, err := p.c.ResolveSwipe(ctx, prev, gesture)
	memory, runtime := p.measure(start, err)
	return preds, memory, runtime
}

// PredictNextWord is the profiled version of Corrector.PredictNextWord.
func (p *Profiled) PredictNextWord(ctx context.Context, prev string) ([]string, int64, int64) {
	start := time.Now()
	preds, err := p.c.PredictNextWord(ctx, prev)
	memory, runtime := p.measure(start, err)
	return preds, memory, runtime
}
