package assessment

import (
	"fmt"
	"strconv"
	"strings"
)

// InterpretationNotAvailable is reported when a total score falls
// outside every configured band.
const InterpretationNotAvailable = "Not available"

// ParseRange parses an interpretation band of the form "low-high".
// Both bounds are inclusive.
func ParseRange(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed interpretation range %q", s)
	}
	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed interpretation range %q", s)
	}
	high, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed interpretation range %q", s)
	}
	if low > high {
		return 0, 0, fmt.Errorf("malformed interpretation range %q: low > high", s)
	}
	return low, high, nil
}

// Interpret maps a total score to the band containing it.
func Interpret(q Questionnaire, score int) (string, error) {
	for rng, text := range q.Interpretations {
		low, high, err := ParseRange(rng)
		if err != nil {
			return "", err
		}
		if low <= score && score <= high {
			return text, nil
		}
	}
	return InterpretationNotAvailable, nil
}
