package theory

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tuning is one note name per string, index 0 being the lowest string.
type Tuning []string

// String joins the notes with single spaces, the explicit input form.
func (t Tuning) String() string {
	return strings.Join(t, " ")
}

// ParseTuning resolves tuning text for the given string count.
//
// Two forms are accepted: "Drop <note>", which lowers the standard tuning's
// lowest string to <note>, and an explicit whitespace-separated note list
// whose length must equal stringCount. Tokens are normalised but not
// validated; Generate rejects notes that do not parse.
func ParseTuning(input string, stringCount int) (Tuning, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedTuning)
	}

	if isDropForm(strings.TrimLeftFunc(input, unicode.IsSpace)) {
		return parseDrop(text, stringCount)
	}

	tokens := strings.Fields(text)
	if len(tokens) != stringCount {
		return nil, fmt.Errorf("%w: got %d notes for %d strings", ErrTuningLength, len(tokens), stringCount)
	}
	out := make(Tuning, len(tokens))
	for i, tok := range tokens {
		out[i] = NormalizeNote(tok)
	}
	return out, nil
}

func isDropForm(text string) bool {
	if len(text) < 5 || !strings.EqualFold(text[:4], "drop") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[4:])
	return unicode.IsSpace(r)
}

func parseDrop(text string, stringCount int) (Tuning, error) {
	base, ok := StandardTuning(stringCount)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStringCount, stringCount)
	}
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: drop tuning needs a note", ErrMalformedTuning)
	}
	base[0] = NormalizeNote(tokens[1])
	return base, nil
}
