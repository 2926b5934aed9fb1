// Package conversation implements the open-ended supportive agent used
// whenever no screening is active or warranted.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/didierrc/KusiBot/kusibot/services/llm"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

const (
	// FallbackResponse is returned whenever the LLM backend cannot
	// produce a reply. The agent never surfaces an error to the router.
	FallbackResponse = "Sorry, I'm having trouble coming up with a proper response right now, but I'm still here to listen."

	historyLimit = 10

	systemPrompt = `You are a compassionate and supportive conversational agent in a mental health support chatbot.
Your primary goals are to:
1. Maintain a supportive and non-judgmental tone
2. Listen actively and show understanding
3. Provide gentle guidance when appropriate
4. Respect the user's emotional state and boundaries

Guidelines:
- Respond with empathy and understanding
- Avoid giving direct medical advice or a diagnosis
- If the conversation suggests serious mental health concerns, gently suggest speaking with a mental health professional.

Detected intent of the user's message: %s`
)

// MessageStore provides the recent history used as context.
type MessageStore interface {
	GetRecentMessages(ctx context.Context, convID uint, limit int) ([]models.Message, error)
}

type Agent struct {
	llm      llm.Client
	messages MessageStore
}

func NewAgent(client llm.Client, messages MessageStore) *Agent {
	return &Agent{llm: client, messages: messages}
}

// GenerateResponse builds a transcript from the last messages of the
// conversation, oldest first, and asks the LLM backend for a reply.
// Any failure degrades to the fixed fallback string.
func (a *Agent) GenerateResponse(ctx context.Context, text string, convID uint, intent *string) string {
	history, err := a.messages.GetRecentMessages(ctx, convID, historyLimit)
	if err != nil {
		logging.ErrorLogger.Error("conversation history retrieval failed",
			zap.Uint("conversation_id", convID), zap.Error(err))
		history = nil
	}

	detected := "Normal"
	if intent != nil {
		detected = *intent
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(systemPrompt, detected),
	})
	// history arrives newest first
	for i := len(history) - 1; i >= 0; i-- {
		role := "assistant"
		if history[i].IsUser {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: history[i].Text})
	}
	messages = append(messages, llm.Message{Role: "user", Content: text})

	reply, err := a.llm.Chat(ctx, messages)
	if err != nil {
		logging.ErrorLogger.Error("conversation llm call failed",
			zap.Uint("conversation_id", convID), zap.Error(err))
		return FallbackResponse
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackResponse
	}
	return reply
}
