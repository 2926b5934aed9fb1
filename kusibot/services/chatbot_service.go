package services

import (
	"context"
	"time"

	"github.com/didierrc/KusiBot/kusibot/chatbot"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

const (
	StartConversationMsg = "Hello! I'm Kusibot and I'm here to chat with you about how you're feeling today."
	NoMessageProvidedMsg = "Sorry, but you didn't provide any message."
	NoConversationMsg    = "No current conversation found. Please start a new conversation."

	greetingIntent      = "Greeting"
	maxRetrieveMessages = 10
)

// BotResponder is the orchestrator behind each turn.
type BotResponder interface {
	GenerateBotResponse(ctx context.Context, userInput string, userID, convID uint) (chatbot.BotResponse, error)
}

// ConversationStore is the persistence surface of the chatbot service.
type ConversationStore interface {
	GetActiveConversationByUserID(ctx context.Context, userID uint) (*models.Conversation, error)
	CreateConversation(ctx context.Context, userID uint) (*models.Conversation, error)
	EndConversation(ctx context.Context, id uint) error
	SaveUserMessage(ctx context.Context, convID uint, text string, intent *string) (*models.Message, error)
	SaveBotMessage(ctx context.Context, convID uint, text string, intent *string, agentType string) (*models.Message, error)
	GetRecentMessages(ctx context.Context, convID uint, limit int) ([]models.Message, error)
}

// MessageView is the message shape handed to the web layer.
type MessageView struct {
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatbotService struct {
	convs   ConversationStore
	manager BotResponder
}

func NewChatbotService(convs ConversationStore, manager BotResponder) *ChatbotService {
	return &ChatbotService{convs: convs, manager: manager}
}

// CreateOrGetConversation returns the recent transcript of the user's
// active conversation, creating the conversation (with its greeting)
// when there is none.
func (s *ChatbotService) CreateOrGetConversation(ctx context.Context, userID uint) ([]MessageView, error) {
	conv, err := s.convs.GetActiveConversationByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if conv == nil {
		conv, err = s.convs.CreateConversation(ctx, userID)
		if err != nil {
			return nil, err
		}
		greeting := greetingIntent
		if _, err := s.convs.SaveBotMessage(ctx, conv.ID, StartConversationMsg, &greeting, chatbot.AgentTypeConversation); err != nil {
			return nil, err
		}
	}

	messages, err := s.convs.GetRecentMessages(ctx, conv.ID, maxRetrieveMessages)
	if err != nil {
		return nil, err
	}

	// newest first in storage, oldest first for display
	views := make([]MessageView, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		views = append(views, MessageView{
			Text:      messages[i].Text,
			IsUser:    messages[i].IsUser,
			Timestamp: messages[i].Timestamp,
		})
	}
	return views, nil
}

// GetResponse runs one full chatbot turn: routing, reply generation,
// and persistence of both sides of the exchange. A persistence failure
// is fatal to the turn, never swallowed.
func (s *ChatbotService) GetResponse(ctx context.Context, userInput string, userID uint) (string, error) {
	conv, err := s.convs.GetActiveConversationByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if conv == nil {
		return NoConversationMsg, nil
	}

	botResponse, err := s.manager.GenerateBotResponse(ctx, userInput, userID, conv.ID)
	if err != nil {
		return "", err
	}

	if _, err := s.convs.SaveUserMessage(ctx, conv.ID, userInput, botResponse.IntentDetected); err != nil {
		return "", err
	}
	if _, err := s.convs.SaveBotMessage(ctx, conv.ID, botResponse.AgentResponse, nil, botResponse.AgentType); err != nil {
		return "", err
	}

	return botResponse.AgentResponse, nil
}

// EndConversation closes the user's active conversation if there is
// one. Returns whether a conversation was ended.
func (s *ChatbotService) EndConversation(ctx context.Context, userID uint) (bool, error) {
	conv, err := s.convs.GetActiveConversationByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, nil
	}
	if err := s.convs.EndConversation(ctx, conv.ID); err != nil {
		return false, err
	}
	return true, nil
}
