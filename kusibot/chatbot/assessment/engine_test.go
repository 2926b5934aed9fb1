package assessment

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/didierrc/KusiBot/kusibot/services/llm"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/dao"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger()
	os.Exit(m.Run())
}

type savedAnswer struct {
	assessmentID     uint
	questionNumber   int
	questionText     string
	userResponse     string
	categorizedValue int
}

type fakeStore struct {
	updates    []dao.AssessmentUpdates
	answers    []savedAnswer
	failUpdate error
}

func (f *fakeStore) UpdateAssessment(ctx context.Context, id uint, updates dao.AssessmentUpdates) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.updates = append(f.updates, updates)
	return nil
}

func (f *fakeStore) SumCategorizedValues(ctx context.Context, assessmentID uint) (int, error) {
	total := 0
	for _, a := range f.answers {
		if a.assessmentID == assessmentID {
			total += a.categorizedValue
		}
	}
	return total, nil
}

func (f *fakeStore) SaveAssessmentQuestion(ctx context.Context, assessmentID uint, questionNumber int, questionText, userResponse string, categorizedValue int) error {
	f.answers = append(f.answers, savedAnswer{
		assessmentID:     assessmentID,
		questionNumber:   questionNumber,
		questionText:     questionText,
		userResponse:     userResponse,
		categorizedValue: categorizedValue,
	})
	return nil
}

type fakeMessages struct {
	history []models.Message
}

func (f *fakeMessages) GetRecentMessages(ctx context.Context, convID uint, limit int) ([]models.Message, error) {
	return f.history, nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return f.reply, f.err
}

func testSet() Set {
	return Set{
		"PHQ-2": {
			Intent: "depression",
			Questions: []Question{
				{ID: 1, Text: "little interest", Prompt: "How often have you had little interest in doing things?", Options: []string{"Not at all", "Several days", "Nearly every day"}},
				{ID: 2, Text: "feeling down", Prompt: "How often have you been feeling down?", Options: []string{"Not at all", "Several days", "Nearly every day"}},
			},
			Interpretations: map[string]string{
				"0-1": "Minimal",
				"2-4": "Elevated",
			},
		},
	}
}

func newTestEngine(store *fakeStore) *Engine {
	return NewEngine(testSet(), llm.NewClient("", ""), store, &fakeMessages{})
}

func TestEngineFullScreening(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	e := newTestEngine(store)

	a := &models.Assessment{
		ID:              7,
		UserID:          1,
		AssessmentType:  "PHQ-2",
		CurrentQuestion: 1,
		CurrentState:    models.StateAskingQuestion,
	}

	// Turn 1: the trigger message is consumed asking question 1.
	resp, err := e.GenerateResponse(ctx, "I feel sad lately", 3, a)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !strings.Contains(resp, "little interest in doing things") {
		t.Errorf("turn 1 response should carry question 1, got %q", resp)
	}
	if a.CurrentState != models.StateWaitingFreeText {
		t.Errorf("turn 1 state = %q, want %q", a.CurrentState, models.StateWaitingFreeText)
	}

	// Turn 2: free text elaboration buffers and shows the options.
	resp, err = e.GenerateResponse(ctx, "I just stay in bed", 3, a)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !strings.Contains(resp, "which of these options best fits") {
		t.Errorf("turn 2 response missing option intro, got %q", resp)
	}
	if !strings.Contains(resp, "1. Not at all") || !strings.Contains(resp, "3. Nearly every day") {
		t.Errorf("turn 2 response missing numbered options, got %q", resp)
	}
	if a.CurrentState != models.StateWaitingCategorization {
		t.Errorf("turn 2 state = %q, want %q", a.CurrentState, models.StateWaitingCategorization)
	}
	if a.LastFreeText == nil || *a.LastFreeText != "I just stay in bed" {
		t.Errorf("turn 2 should buffer the free text, got %v", a.LastFreeText)
	}

	// Turn 3: a valid choice records the zero-based value and asks the
	// next question in the same turn.
	resp, err = e.GenerateResponse(ctx, "2", 3, a)
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if len(store.answers) != 1 {
		t.Fatalf("turn 3 should record one answer, got %d", len(store.answers))
	}
	answer := store.answers[0]
	if answer.categorizedValue != 1 {
		t.Errorf("answer value = %d, want 1 (zero-based)", answer.categorizedValue)
	}
	if answer.userResponse != "I just stay in bed" {
		t.Errorf("answer response = %q, want the buffered free text", answer.userResponse)
	}
	if answer.questionNumber != 1 || answer.questionText != "little interest" {
		t.Errorf("answer records wrong question: %+v", answer)
	}
	if !strings.Contains(resp, "feeling down") {
		t.Errorf("turn 3 should ask question 2, got %q", resp)
	}
	if a.CurrentQuestion != 2 || a.CurrentState != models.StateWaitingFreeText {
		t.Errorf("turn 3 left question=%d state=%q", a.CurrentQuestion, a.CurrentState)
	}
	if a.LastFreeText != nil {
		t.Error("turn 3 should clear the buffered free text")
	}

	// Turn 4: elaboration for question 2.
	if _, err := e.GenerateResponse(ctx, "most days honestly", 3, a); err != nil {
		t.Fatalf("turn 4: %v", err)
	}

	// Turn 5: final choice scores and closes the screening.
	resp, err = e.GenerateResponse(ctx, "3", 3, a)
	if err != nil {
		t.Fatalf("turn 5: %v", err)
	}
	closing := false
	for _, msg := range closingMessages {
		if resp == msg {
			closing = true
		}
	}
	if !closing {
		t.Errorf("turn 5 should answer with a closing message, got %q", resp)
	}
	if a.CurrentState != models.StateFinished {
		t.Errorf("final state = %q, want %q", a.CurrentState, models.StateFinished)
	}
	if a.EndTime == nil {
		t.Error("finished assessment should carry an end time")
	}
	if a.TotalScore == nil || *a.TotalScore != 3 {
		t.Errorf("total score = %v, want 3", a.TotalScore)
	}
	if a.Interpretation == nil || *a.Interpretation != "Elevated" {
		t.Errorf("interpretation = %v, want Elevated", a.Interpretation)
	}
}

func TestEngineInvalidChoiceReprompts(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	e := newTestEngine(store)

	freeText := "I worry a lot"
	a := &models.Assessment{
		ID:              9,
		AssessmentType:  "PHQ-2",
		CurrentQuestion: 1,
		CurrentState:    models.StateWaitingCategorization,
		LastFreeText:    &freeText,
	}

	for _, input := range []string{"not a number", "0", "4", "-1", ""} {
		resp, err := e.GenerateResponse(ctx, input, 3, a)
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if resp != badNumberResponse {
			t.Errorf("input %q: got %q, want re-prompt", input, resp)
		}
		if a.CurrentState != models.StateWaitingCategorization || a.CurrentQuestion != 1 {
			t.Errorf("input %q mutated state to %q question %d", input, a.CurrentState, a.CurrentQuestion)
		}
		if len(store.answers) != 0 {
			t.Errorf("input %q recorded an answer", input)
		}
	}

	// Whitespace around a valid number is accepted.
	if _, err := e.GenerateResponse(ctx, " 2 ", 3, a); err != nil {
		t.Fatalf("padded number: %v", err)
	}
	if len(store.answers) != 1 || store.answers[0].categorizedValue != 1 {
		t.Errorf("padded number not categorized: %+v", store.answers)
	}
}

func TestEngineUnknownState(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	a := &models.Assessment{AssessmentType: "PHQ-2", CurrentState: "bogus"}
	if _, err := e.GenerateResponse(context.Background(), "hi", 1, a); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestEngineStoreFailureStopsTurn(t *testing.T) {
	boom := errors.New("db down")
	store := &fakeStore{failUpdate: boom}
	e := newTestEngine(store)

	a := &models.Assessment{
		AssessmentType:  "PHQ-2",
		CurrentQuestion: 1,
		CurrentState:    models.StateAskingQuestion,
	}
	if _, err := e.GenerateResponse(context.Background(), "hi", 1, a); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if a.CurrentState != models.StateAskingQuestion {
		t.Errorf("state mutated past a failed write: %q", a.CurrentState)
	}
}

func TestMapIntentToAssessment(t *testing.T) {
	e := newTestEngine(&fakeStore{})

	key, ok := e.MapIntentToAssessment("Depression")
	if !ok || key != "PHQ-2" {
		t.Errorf("MapIntentToAssessment(Depression) = %q, %v", key, ok)
	}
	if _, ok := e.MapIntentToAssessment("Suicidal"); ok {
		t.Error("unregistered intent should not map to a questionnaire")
	}
}

func TestNaturalizeQuestionLeadIn(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(testSet(), &fakeLLM{reply: " It sounds like things have been heavy. "}, store, &fakeMessages{})

	a := &models.Assessment{
		AssessmentType:  "PHQ-2",
		CurrentQuestion: 1,
		CurrentState:    models.StateAskingQuestion,
	}
	resp, err := e.GenerateResponse(context.Background(), "hi", 1, a)
	if err != nil {
		t.Fatal(err)
	}
	want := "It sounds like things have been heavy.\n\nHow often have you had little interest in doing things?"
	if resp != want {
		t.Errorf("naturalized prompt = %q, want %q", resp, want)
	}
}

func TestNaturalizeQuestionDegradesOnLLMError(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(testSet(), &fakeLLM{err: errors.New("timeout")}, store, &fakeMessages{})

	a := &models.Assessment{
		AssessmentType:  "PHQ-2",
		CurrentQuestion: 1,
		CurrentState:    models.StateAskingQuestion,
	}
	resp, err := e.GenerateResponse(context.Background(), "hi", 1, a)
	if err != nil {
		t.Fatal(err)
	}
	if resp != "How often have you had little interest in doing things?" {
		t.Errorf("expected raw question wording on LLM failure, got %q", resp)
	}
}
