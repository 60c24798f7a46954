package engine

import (
	"strconv"
	"strings"
)

// Placeholder tokens recognised in opcode calls and requirement fields.
const (
	TokenBuffer               = "BUFFER"
	TokenActiveAmount         = "ACTIVE_AMOUNT"
	TokenReproductionCost     = "REPRODUCTION_COST"
	TokenReproductionResource = "REPRODUCTION_RESOURCE"
)

var tokens = []string{TokenBuffer, TokenActiveAmount, TokenReproductionCost, TokenReproductionResource}

// Substitute replaces every placeholder token in text with the current tribe
// value. It is a single pass: replacement text is never scanned again.
func Substitute(text string, b Blackboard) string {
	if !hasToken(text) {
		return text
	}
	r := strings.NewReplacer(
		TokenBuffer, b.Buffer(BufferMain),
		TokenActiveAmount, b.Buffer(BufferActiveAmount),
		TokenReproductionCost, strconv.Itoa(b.ReproductionCost()),
		TokenReproductionResource, b.NeededResource(),
	)
	return r.Replace(text)
}

func hasToken(text string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// Atoi parses a leading decimal integer the way recipe data expects:
// surrounding space is ignored and anything unparsable counts as 0.
func Atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func atof32(s string) float32 {
	return float32(Atoi(s))
}
