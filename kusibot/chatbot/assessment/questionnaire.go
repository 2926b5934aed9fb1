package assessment

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Question is a single screening item. Text is the short clinical
// wording recorded with the answer; Prompt is the full wording
// presented (or naturalized) to the user.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// Questionnaire is one configured screening instrument (PHQ-9, GAD-7).
// Interpretations maps inclusive "low-high" score ranges to severity
// labels.
type Questionnaire struct {
	Intent          string            `json:"intent"`
	Questions       []Question        `json:"questions"`
	Interpretations map[string]string `json:"interpretations"`
}

// Set holds every configured questionnaire, keyed by its identifier
// (the value stored in Assessment.AssessmentType). Loaded once at
// startup and treated as immutable.
type Set map[string]Questionnaire

// LoadQuestionnaires reads and validates the questionnaire config.
func LoadQuestionnaires(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questionnaires: %w", err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decoding questionnaires: %w", err)
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s Set) validate() error {
	for key, q := range s {
		if len(q.Questions) == 0 {
			return fmt.Errorf("questionnaire %q has no questions", key)
		}
		for i, question := range q.Questions {
			if question.ID != i+1 {
				return fmt.Errorf("questionnaire %q: question ids must be sequential from 1, got %d at position %d", key, question.ID, i)
			}
			if len(question.Options) == 0 {
				return fmt.Errorf("questionnaire %q: question %d has no options", key, question.ID)
			}
		}
		for rng := range q.Interpretations {
			if _, _, err := ParseRange(rng); err != nil {
				return fmt.Errorf("questionnaire %q: %w", key, err)
			}
		}
	}
	return nil
}

// ByIntent maps a detected intent to the questionnaire that screens
// for it. Intent comparison is case-insensitive.
func (s Set) ByIntent(intent string) (string, bool) {
	for key, q := range s {
		if q.Intent == strings.ToLower(intent) {
			return key, true
		}
	}
	return "", false
}

// Question returns question id from questionnaire key.
func (s Set) Question(key string, id int) (Question, bool) {
	q, ok := s[key]
	if !ok {
		return Question{}, false
	}
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

func (s Set) TotalQuestions(key string) int {
	return len(s[key].Questions)
}
