package translator

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedLanguagePair = errors.New("unsupported language pair")
	ErrTranslationFailed       = errors.New("translation failed")
)

// Translator maps (text, source lang, target lang) to translated text.
// Implementations may be slow or blocking; callers bound the call with
// the context deadline. Language codes arrive already lowercased.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
