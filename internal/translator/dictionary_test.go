package translator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_Translate(t *testing.T) {
	d := NewDictionary()
	ctx := context.Background()

	t.Run("known word", func(t *testing.T) {
		out, err := d.Translate(ctx, "hello", "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, "bonjour", out)
	})

	t.Run("reverse pair", func(t *testing.T) {
		out, err := d.Translate(ctx, "monde", "fr", "en")
		require.NoError(t, err)
		assert.Equal(t, "world", out)
	})

	t.Run("case preserved", func(t *testing.T) {
		out, err := d.Translate(ctx, "Hello", "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, "Bonjour", out)
	})

	t.Run("unknown word falls back to tagged echo", func(t *testing.T) {
		out, err := d.Translate(ctx, "gateway", "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, "[fr] gateway", out)
	})

	t.Run("unsupported pair", func(t *testing.T) {
		_, err := d.Translate(ctx, "hello", "en", "de")
		assert.ErrorIs(t, err, ErrUnsupportedLanguagePair)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := d.Translate(cancelled, "hello", "en", "fr")
		assert.ErrorIs(t, err, ErrTranslationFailed)
	})
}
