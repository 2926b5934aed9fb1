package assessment

import "testing"

func TestParseRange(t *testing.T) {
	cases := []struct {
		in        string
		low, high int
		wantErr   bool
	}{
		{"0-4", 0, 4, false},
		{"5-9", 5, 9, false},
		{"15 - 21", 15, 21, false},
		{"7-7", 7, 7, false},
		{"9-5", 0, 0, true},
		{"abc", 0, 0, true},
		{"1-x", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, c := range cases {
		low, high, err := ParseRange(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q): expected error, got %d-%d", c.in, low, high)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q): unexpected error: %v", c.in, err)
			continue
		}
		if low != c.low || high != c.high {
			t.Errorf("ParseRange(%q) = %d-%d, want %d-%d", c.in, low, high, c.low, c.high)
		}
	}
}

func TestInterpret(t *testing.T) {
	q := Questionnaire{
		Interpretations: map[string]string{
			"0-4":   "Minimal",
			"5-9":   "Mild",
			"10-14": "Moderate",
		},
	}

	cases := []struct {
		score int
		want  string
	}{
		{0, "Minimal"},
		{4, "Minimal"},
		{5, "Mild"},
		{9, "Mild"},
		{10, "Moderate"},
		{14, "Moderate"},
		{15, InterpretationNotAvailable},
		{-1, InterpretationNotAvailable},
	}
	for _, c := range cases {
		got, err := Interpret(q, c.score)
		if err != nil {
			t.Fatalf("Interpret(%d): unexpected error: %v", c.score, err)
		}
		if got != c.want {
			t.Errorf("Interpret(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestInterpretMalformedRange(t *testing.T) {
	q := Questionnaire{
		Interpretations: map[string]string{"broken": "Bad"},
	}
	if _, err := Interpret(q, 3); err == nil {
		t.Fatal("expected error for malformed interpretation range")
	}
}
