// Package chatbot orchestrates the agents behind each user turn:
// either the turn belongs to an ongoing screening, or the detected
// intent decides between starting a screening and open conversation.
package chatbot

import (
	"context"

	"go.uber.org/zap"

	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

const (
	AgentTypeConversation = "Conversation"
	AgentTypeAssessment   = "Assessment"

	// IntentNormal is the classifier label that never triggers a
	// screening.
	IntentNormal = "Normal"

	// DefaultConfidenceThreshold gates screening starts.
	DefaultConfidenceThreshold = 0.5
)

// BotResponse is the wire shape handed back to the web layer.
type BotResponse struct {
	IntentDetected *string `json:"intent_detected"`
	AgentResponse  string  `json:"agent_response"`
	AgentType      string  `json:"agent_type"`
}

// IntentClassifier predicts (label, confidence) for a user message.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (string, float64, error)
}

// ConversationAgent produces the open-ended supportive reply. It never
// fails; backend trouble degrades to a fixed string internally.
type ConversationAgent interface {
	GenerateResponse(ctx context.Context, text string, convID uint, intent *string) string
}

// AssessmentEngine drives an active screening one turn forward.
type AssessmentEngine interface {
	MapIntentToAssessment(intent string) (string, bool)
	GenerateResponse(ctx context.Context, userInput string, convID uint, a *models.Assessment) (string, error)
}

// AssessmentStore is the slice of persistence the router itself needs.
type AssessmentStore interface {
	GetActiveAssessmentByUserID(ctx context.Context, userID uint) (*models.Assessment, error)
	CreateAssessment(ctx context.Context, userID uint, assessmentType, messageTrigger, state string) (*models.Assessment, error)
}

// Manager coordinates classifier, conversation agent and assessment
// engine. All collaborators are injected once at startup.
type Manager struct {
	classifier   IntentClassifier
	conversation ConversationAgent
	assessment   AssessmentEngine
	assessments  AssessmentStore
	threshold    float64
}

func NewManager(classifier IntentClassifier, conversation ConversationAgent, assessment AssessmentEngine, assessments AssessmentStore, threshold float64) *Manager {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Manager{
		classifier:   classifier,
		conversation: conversation,
		assessment:   assessment,
		assessments:  assessments,
		threshold:    threshold,
	}
}

// GenerateBotResponse handles one user turn. While a screening is in
// progress the input is consumed by the screening protocol and intent
// classification is skipped entirely.
func (m *Manager) GenerateBotResponse(ctx context.Context, userInput string, userID, convID uint) (BotResponse, error) {
	active, err := m.assessments.GetActiveAssessmentByUserID(ctx, userID)
	if err != nil {
		return BotResponse{}, err
	}

	if active != nil {
		text, err := m.assessment.GenerateResponse(ctx, userInput, convID, active)
		if err != nil {
			return BotResponse{}, err
		}
		return BotResponse{AgentResponse: text, AgentType: AgentTypeAssessment}, nil
	}

	intent, confidence := m.classify(ctx, userInput)
	resp := BotResponse{
		IntentDetected: &intent,
		AgentType:      AgentTypeConversation,
	}

	questionnaire, registered := m.assessment.MapIntentToAssessment(intent)
	if confidence >= m.threshold && intent != IntentNormal && registered {
		created, err := m.assessments.CreateAssessment(ctx, userID, questionnaire, userInput, models.StateAskingQuestion)
		if err != nil {
			return BotResponse{}, err
		}
		text, err := m.assessment.GenerateResponse(ctx, userInput, convID, created)
		if err != nil {
			return BotResponse{}, err
		}
		resp.AgentResponse = text
		resp.AgentType = AgentTypeAssessment
		return resp, nil
	}

	resp.AgentResponse = m.conversation.GenerateResponse(ctx, userInput, convID, resp.IntentDetected)
	return resp, nil
}

// classify calls the intent model, degrading to ("Normal", 0) when it
// is unavailable so the turn still gets a conversational reply.
func (m *Manager) classify(ctx context.Context, text string) (string, float64) {
	intent, confidence, err := m.classifier.Classify(ctx, text)
	if err != nil {
		logging.ErrorLogger.Error("intent classification failed, routing to conversation", zap.Error(err))
		return IntentNormal, 0
	}
	return intent, confidence
}
