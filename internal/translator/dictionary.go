package translator

import (
	"context"
	"strings"
	"unicode"
)

type langPair struct {
	source string
	target string
}

// Dictionary is a word-lookup translator covering the en<->fr pairs.
// Unknown words are echoed back tagged with the target language, so
// the pipeline stays exercisable without a real engine.
type Dictionary struct {
	words map[langPair]map[string]string
}

func NewDictionary() *Dictionary {
	enFr := map[string]string{
		"hello":   "bonjour",
		"world":   "monde",
		"goodbye": "au revoir",
		"thanks":  "merci",
	}
	frEn := make(map[string]string, len(enFr))
	for en, fr := range enFr {
		frEn[fr] = en
	}
	return &Dictionary{
		words: map[langPair]map[string]string{
			{"en", "fr"}: enFr,
			{"fr", "en"}: frEn,
		},
	}
}

func (d *Dictionary) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrTranslationFailed
	}
	pair := langPair{sourceLang, targetLang}
	dict, ok := d.words[pair]
	if !ok {
		return "", ErrUnsupportedLanguagePair
	}
	if out, ok := dict[strings.ToLower(text)]; ok {
		if startsUpper(text) {
			return capitalize(out), nil
		}
		return out, nil
	}
	return "[" + targetLang + "] " + text, nil
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
