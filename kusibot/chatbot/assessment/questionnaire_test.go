package assessment

import (
	"os"
	"path/filepath"
	"testing"
)

func writeQuestionnaireFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questionnaires.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing questionnaire file: %v", err)
	}
	return path
}

func TestLoadQuestionnairesShippedConfig(t *testing.T) {
	set, err := LoadQuestionnaires("../questionnaires/questionnaires.json")
	if err != nil {
		t.Fatalf("loading shipped questionnaires: %v", err)
	}

	if _, ok := set["PHQ-9"]; !ok {
		t.Error("expected PHQ-9 in shipped config")
	}
	if _, ok := set["GAD-7"]; !ok {
		t.Error("expected GAD-7 in shipped config")
	}
	if n := set.TotalQuestions("PHQ-9"); n != 9 {
		t.Errorf("PHQ-9 has %d questions, want 9", n)
	}
	if n := set.TotalQuestions("GAD-7"); n != 7 {
		t.Errorf("GAD-7 has %d questions, want 7", n)
	}
}

func TestLoadQuestionnairesValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"non-sequential ids",
			`{"Q": {"intent": "x", "questions": [{"id": 2, "text": "t", "question": "p", "options": ["a"]}], "interpretations": {"0-1": "ok"}}}`,
		},
		{
			"no options",
			`{"Q": {"intent": "x", "questions": [{"id": 1, "text": "t", "question": "p", "options": []}], "interpretations": {"0-1": "ok"}}}`,
		},
		{
			"no questions",
			`{"Q": {"intent": "x", "questions": [], "interpretations": {"0-1": "ok"}}}`,
		},
		{
			"bad interpretation range",
			`{"Q": {"intent": "x", "questions": [{"id": 1, "text": "t", "question": "p", "options": ["a"]}], "interpretations": {"oops": "bad"}}}`,
		},
		{
			"invalid json",
			`{`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeQuestionnaireFile(t, c.content)
			if _, err := LoadQuestionnaires(path); err == nil {
				t.Errorf("expected validation error for %s", c.name)
			}
		})
	}
}

func TestLoadQuestionnairesMissingFile(t *testing.T) {
	if _, err := LoadQuestionnaires(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestByIntentCaseInsensitive(t *testing.T) {
	set := Set{
		"PHQ-9": {Intent: "depression"},
		"GAD-7": {Intent: "anxiety"},
	}

	for _, intent := range []string{"depression", "Depression", "DEPRESSION"} {
		key, ok := set.ByIntent(intent)
		if !ok || key != "PHQ-9" {
			t.Errorf("ByIntent(%q) = %q, %v; want PHQ-9, true", intent, key, ok)
		}
	}
	if _, ok := set.ByIntent("Suicidal"); ok {
		t.Error("ByIntent should not match an unregistered intent")
	}
	if _, ok := set.ByIntent("Normal"); ok {
		t.Error("ByIntent should not match Normal")
	}
}

func TestQuestionLookup(t *testing.T) {
	set := Set{
		"Q": {Questions: []Question{
			{ID: 1, Text: "first"},
			{ID: 2, Text: "second"},
		}},
	}

	q, ok := set.Question("Q", 2)
	if !ok || q.Text != "second" {
		t.Errorf("Question(Q, 2) = %+v, %v", q, ok)
	}
	if _, ok := set.Question("Q", 3); ok {
		t.Error("expected miss for question id past the end")
	}
	if _, ok := set.Question("missing", 1); ok {
		t.Error("expected miss for unknown questionnaire")
	}
}
