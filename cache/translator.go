package cache

import (
	"context"
	"fmt"

	"github.com/dokit-tools/dokit/translate"
)

// Translator wraps another translator with the store: cached fragments are
// answered locally, only the misses travel to the backend, and fresh results
// are written back. Positional pairing of the outer batch is preserved.
type Translator struct {
	Next     translate.Translator
	Store    *Store
	Provider string
	Model    string
}

// Translate implements translate.Translator.
func (t *Translator) Translate(ctx context.Context, fragments []string, targetLang string, hint translate.Hint) ([]string, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	out := make([]string, len(fragments))
	var misses []string
	var missIdx []int
	for i, f := range fragments {
		got, ok, err := t.Store.Get(f, t.Provider, t.Model, targetLang)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = got
			continue
		}
		misses = append(misses, f)
		missIdx = append(missIdx, i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	translated, err := t.Next.Translate(ctx, misses, targetLang, hint)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(misses) {
		return nil, fmt.Errorf("cache: backend returned %d translations for %d fragments", len(translated), len(misses))
	}
	for j, idx := range missIdx {
		out[idx] = translated[j]
		if err := t.Store.Put(misses[j], t.Provider, t.Model, targetLang, translated[j]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
