package captions

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaskToken is the character used for censored letters.
const MaskToken = "*"

// wordRe matches letter/digit runs with inner apostrophes or hyphens,
// so "don't" and "re-do" censor as single tokens.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['-][\p{L}\p{N}_]+)*`)

// stripMarks decomposes to NFKD and drops combining marks, folding
// accented letters to their base form before matching.
var stripMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Censor masks badwords in caption text. Matching is accent- and
// case-insensitive; masking preserves word length per the display
// policy so caption layout stays stable.
type Censor struct {
	badwords map[string]struct{}
}

// LoadCensor reads a JSON array of badwords. A missing file yields an
// empty censor, not an error: censoring is optional.
func LoadCensor(path string) (*Censor, error) {
	c := &Censor{badwords: make(map[string]struct{})}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read badwords: %w", err)
	}
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parse badwords %s: %w", path, err)
	}
	for _, w := range words {
		if n := normalizeToken(w); n != "" {
			c.badwords[n] = struct{}{}
		}
	}
	return c, nil
}

// NewCensor builds a censor from an in-memory word list.
func NewCensor(words []string) *Censor {
	c := &Censor{badwords: make(map[string]struct{})}
	for _, w := range words {
		if n := normalizeToken(w); n != "" {
			c.badwords[n] = struct{}{}
		}
	}
	return c
}

func normalizeToken(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Apply masks every badword token in text. Already-masked tokens stay
// untouched, so applying twice is a no-op.
func (c *Censor) Apply(text string) string {
	if len(c.badwords) == 0 {
		return text
	}
	return wordRe.ReplaceAllStringFunc(text, func(tok string) string {
		if _, hit := c.badwords[normalizeToken(tok)]; !hit {
			return tok
		}
		return maskWord(tok)
	})
}

// maskWord applies the display policy: very short words are fully
// masked, short words keep the first rune, longer words keep the first
// and last runes.
func maskWord(tok string) string {
	r := []rune(tok)
	n := len(r)
	switch {
	case n <= 2:
		return strings.Repeat(MaskToken, n)
	case n <= 4:
		return string(r[0]) + strings.Repeat(MaskToken, n-1)
	default:
		return string(r[0]) + strings.Repeat(MaskToken, n-2) + string(r[n-1])
	}
}
