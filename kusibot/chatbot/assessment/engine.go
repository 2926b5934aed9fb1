// Package assessment drives a structured screening questionnaire
// turn by turn: ask a question, collect a free-text elaboration,
// collapse it onto a numbered option, and finalize with a score and
// interpretation. All per-assessment state lives in the Assessment
// record, so a screening survives across web requests.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/didierrc/KusiBot/kusibot/services/llm"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/dao"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

const (
	// Verbatim turn responses of the screening protocol.
	freeTextIntro     = "Thanks for sharing. Based on what you described, which of these options best fits how often you've felt that way over the last 2 weeks?\n"
	freeTextOutro     = "\n\n(Please enter the number)"
	badNumberResponse = "Sorry, I need the number corresponding to the option. Can you please provide the number?"

	// Messages left in the conversation by the LLM naturalization step.
	naturalizePrompt = `You are a friendly assistant in a mental health chatbot.
Generate a short, natural lead-in phrase (1 sentence max) to gently introduce an assessment question.
Do NOT ask the actual question. The question is about: '%s'.
Generate ONLY the lead-in phrase taking in mind the following rules:
- If the ID of the question is 1: generate the lead-in phrase based on the conversation context.
- If the ID is other than 1: generate the lead-in phrase based on the previous question.
Question ID: %d
Context:
%s
Your Response:`

	naturalizeContextLimit = 4
)

// closingMessages is the fixed pool the finalization response is drawn
// from.
var closingMessages = []string{
	"Thanks for answering all the questions, speaking about your feelings is important. Remember that you can always reach out to a professional if you need help.",
	"That was the last question, thank you for sharing all of that with me. If any of this feels heavy, a mental health professional can help you carry it.",
	"We're done with the questions. I appreciate you opening up, and please remember professional support is always an option.",
}

var (
	ErrUnknownQuestionnaire = errors.New("unknown questionnaire type")
	ErrUnknownQuestion      = errors.New("question not found in questionnaire")
	ErrUnknownState         = errors.New("unknown assessment state")
)

// Store is the persistence surface the engine needs. A failed write is
// returned to the caller; the engine never advances past one.
type Store interface {
	UpdateAssessment(ctx context.Context, id uint, updates dao.AssessmentUpdates) error
	SumCategorizedValues(ctx context.Context, assessmentID uint) (int, error)
	SaveAssessmentQuestion(ctx context.Context, assessmentID uint, questionNumber int, questionText, userResponse string, categorizedValue int) error
}

// MessageStore provides the recent history used to naturalize question
// lead-ins.
type MessageStore interface {
	GetRecentMessages(ctx context.Context, convID uint, limit int) ([]models.Message, error)
}

// turn carries the inputs of one engine invocation.
type turn struct {
	input      string
	convID     uint
	assessment *models.Assessment
}

type transitionFunc func(ctx context.Context, t turn) (string, error)

// Engine owns the assessment state machine. Transitions are selected
// from a handler table keyed by the persisted state tag.
type Engine struct {
	questionnaires Set
	llm            llm.Client
	store          Store
	messages       MessageStore
	handlers       map[string]transitionFunc
}

func NewEngine(questionnaires Set, client llm.Client, store Store, messages MessageStore) *Engine {
	e := &Engine{
		questionnaires: questionnaires,
		llm:            client,
		store:          store,
		messages:       messages,
	}
	e.handlers = map[string]transitionFunc{
		models.StateAskingQuestion:        e.askQuestion,
		models.StateWaitingFreeText:       e.collectFreeText,
		models.StateWaitingCategorization: e.categorize,
	}
	return e
}

// MapIntentToAssessment returns the questionnaire key registered for
// the intent, if any.
func (e *Engine) MapIntentToAssessment(intent string) (string, bool) {
	return e.questionnaires.ByIntent(intent)
}

// GenerateResponse advances the assessment by one turn and returns the
// text to show the user. The assessment record reflects the new state
// on return; on error nothing has been mutated past the failed write.
func (e *Engine) GenerateResponse(ctx context.Context, userInput string, convID uint, a *models.Assessment) (string, error) {
	handler, ok := e.handlers[a.CurrentState]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, a.CurrentState)
	}
	return handler(ctx, turn{input: userInput, convID: convID, assessment: a})
}

// askQuestion is entered programmatically: it presents the current
// question and starts waiting for the user's free-text elaboration.
func (e *Engine) askQuestion(ctx context.Context, t turn) (string, error) {
	a := t.assessment
	question, ok := e.questionnaires.Question(a.AssessmentType, a.CurrentQuestion)
	if !ok {
		return "", fmt.Errorf("%w: %s question %d", ErrUnknownQuestion, a.AssessmentType, a.CurrentQuestion)
	}

	prompt := e.naturalizeQuestion(ctx, question, t.convID)

	state := models.StateWaitingFreeText
	if err := e.store.UpdateAssessment(ctx, a.ID, dao.AssessmentUpdates{CurrentState: &state}); err != nil {
		return "", err
	}
	a.CurrentState = state
	return prompt, nil
}

// collectFreeText buffers the elaboration and presents the fixed
// option list, numbered from 1.
func (e *Engine) collectFreeText(ctx context.Context, t turn) (string, error) {
	a := t.assessment
	question, ok := e.questionnaires.Question(a.AssessmentType, a.CurrentQuestion)
	if !ok {
		return "", fmt.Errorf("%w: %s question %d", ErrUnknownQuestion, a.AssessmentType, a.CurrentQuestion)
	}

	var sb strings.Builder
	sb.WriteString(freeTextIntro)
	for i, option := range question.Options {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, option))
	}
	sb.WriteString(freeTextOutro)

	state := models.StateWaitingCategorization
	freeText := t.input
	err := e.store.UpdateAssessment(ctx, a.ID, dao.AssessmentUpdates{
		CurrentState: &state,
		LastFreeText: &freeText,
	})
	if err != nil {
		return "", err
	}
	a.CurrentState = state
	a.LastFreeText = &freeText
	return sb.String(), nil
}

// categorize parses the numbered choice. Invalid input re-prompts
// without touching state or the answer log, so the conversation can
// never desynchronize from the stored record.
func (e *Engine) categorize(ctx context.Context, t turn) (string, error) {
	a := t.assessment
	question, ok := e.questionnaires.Question(a.AssessmentType, a.CurrentQuestion)
	if !ok {
		return "", fmt.Errorf("%w: %s question %d", ErrUnknownQuestion, a.AssessmentType, a.CurrentQuestion)
	}

	selected, err := strconv.Atoi(strings.TrimSpace(t.input))
	if err != nil {
		return badNumberResponse, nil
	}
	index := selected - 1
	if index < 0 || index >= len(question.Options) {
		return badNumberResponse, nil
	}

	var freeText string
	if a.LastFreeText != nil {
		freeText = *a.LastFreeText
	}
	if err := e.store.SaveAssessmentQuestion(ctx, a.ID, a.CurrentQuestion, question.Text, freeText, index); err != nil {
		return "", err
	}

	if a.CurrentQuestion+1 > e.questionnaires.TotalQuestions(a.AssessmentType) {
		return e.finalize(ctx, t)
	}

	state := models.StateAskingQuestion
	next := a.CurrentQuestion + 1
	err = e.store.UpdateAssessment(ctx, a.ID, dao.AssessmentUpdates{
		CurrentState:      &state,
		CurrentQuestion:   &next,
		ClearLastFreeText: true,
	})
	if err != nil {
		return "", err
	}
	a.CurrentState = state
	a.CurrentQuestion = next
	a.LastFreeText = nil

	// Ask the next question in the same turn.
	return e.askQuestion(ctx, t)
}

// finalize is entered programmatically from categorize: it scores the
// assessment, closes the record, and returns a closing message.
func (e *Engine) finalize(ctx context.Context, t turn) (string, error) {
	a := t.assessment
	questionnaire, ok := e.questionnaires[a.AssessmentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, a.AssessmentType)
	}

	total, err := e.store.SumCategorizedValues(ctx, a.ID)
	if err != nil {
		return "", err
	}
	interpretation, err := Interpret(questionnaire, total)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	state := models.StateFinished
	err = e.store.UpdateAssessment(ctx, a.ID, dao.AssessmentUpdates{
		CurrentState:      &state,
		EndTime:           &now,
		TotalScore:        &total,
		Interpretation:    &interpretation,
		ClearLastFreeText: true,
	})
	if err != nil {
		return "", err
	}
	a.CurrentState = state
	a.EndTime = &now
	a.TotalScore = &total
	a.Interpretation = &interpretation
	a.LastFreeText = nil

	logging.AppLogger.Info("assessment finished",
		zap.Uint("assessment_id", a.ID),
		zap.String("type", a.AssessmentType),
		zap.Int("total_score", total),
		zap.String("interpretation", interpretation),
	)

	return closingMessages[rand.Intn(len(closingMessages))], nil
}

// naturalizeQuestion asks the LLM backend for a short lead-in to the
// question, using recent history as context. Degrades to the raw
// question wording when the backend is unavailable or errors.
func (e *Engine) naturalizeQuestion(ctx context.Context, question Question, convID uint) string {
	history, err := e.messages.GetRecentMessages(ctx, convID, naturalizeContextLimit)
	if err != nil {
		logging.ErrorLogger.Error("naturalize history retrieval failed",
			zap.Uint("conversation_id", convID), zap.Error(err))
		history = nil
	}

	var transcript strings.Builder
	// history arrives newest first
	for i := len(history) - 1; i >= 0; i-- {
		author := "Bot"
		if history[i].IsUser {
			author = "User"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", author, history[i].Text)
	}

	prompt := fmt.Sprintf(naturalizePrompt, question.Text, question.ID, transcript.String())
	reply, err := e.llm.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil && !errors.Is(err, llm.ErrUnavailable) {
			logging.ErrorLogger.Error("question naturalization failed", zap.Error(err))
		}
		return question.Prompt
	}
	return strings.TrimSpace(reply) + "\n\n" + question.Prompt
}
