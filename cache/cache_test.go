// Package cache tests.
package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokit-tools/dokit/translate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("hello", "openai", "gpt-4o-mini", "fr")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("hello", "openai", "gpt-4o-mini", "fr", "bonjour"))

	got, ok, err := s.Get("hello", "openai", "gpt-4o-mini", "fr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bonjour", got)
}

func TestStore_KeyIsolation(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("hello", "openai", "gpt-4o-mini", "fr", "bonjour"))

	_, ok, err := s.Get("hello", "openai", "gpt-4o-mini", "de")
	require.NoError(t, err)
	assert.False(t, ok, "different language must not share entries")

	_, ok, err = s.Get("hello", "openai", "other-model", "fr")
	require.NoError(t, err)
	assert.False(t, ok, "different model must not share entries")
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("x", "p", "m", "fr", "old"))
	require.NoError(t, s.Put("x", "p", "m", "fr", "new"))
	got, ok, err := s.Get("x", "p", "m", "fr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

// recordingTranslator upper-cases fragments and records what it was asked.
type recordingTranslator struct {
	asked [][]string
}

func (r *recordingTranslator) Translate(ctx context.Context, fragments []string, targetLang string, hint translate.Hint) ([]string, error) {
	r.asked = append(r.asked, append([]string(nil), fragments...))
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = "T:" + f
	}
	return out, nil
}

func TestTranslator_OnlyMissesReachBackend(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("two", "p", "m", "fr", "deux"))

	next := &recordingTranslator{}
	ct := &Translator{Next: next, Store: s, Provider: "p", Model: "m"}

	got, err := ct.Translate(context.Background(), []string{"one", "two", "three"}, "fr", translate.Hint{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T:one", "deux", "T:three"}, got)

	require.Len(t, next.asked, 1)
	assert.Equal(t, []string{"one", "three"}, next.asked[0])

	// Second run is fully cached.
	got, err = ct.Translate(context.Background(), []string{"one", "two", "three"}, "fr", translate.Hint{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T:one", "deux", "T:three"}, got)
	assert.Len(t, next.asked, 1, "no new backend call expected")
}
