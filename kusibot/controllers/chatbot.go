package controllers

import (
	"context"

	"github.com/didierrc/KusiBot/kusibot/services"
)

type ChatbotController struct {
	chatbot *services.ChatbotService
}

func NewChatbotController(chatbot *services.ChatbotService) *ChatbotController {
	return &ChatbotController{chatbot: chatbot}
}

// Bootstrap returns the transcript of the user's active conversation,
// creating one when needed.
func (c *ChatbotController) Bootstrap(ctx context.Context, userID uint) ([]services.MessageView, error) {
	return c.chatbot.CreateOrGetConversation(ctx, userID)
}

// Chat handles one user turn.
func (c *ChatbotController) Chat(ctx context.Context, userID uint, message string) (string, error) {
	if message == "" {
		return services.NoMessageProvidedMsg, nil
	}
	return c.chatbot.GetResponse(ctx, message, userID)
}

// End closes the user's active conversation.
func (c *ChatbotController) End(ctx context.Context, userID uint) (bool, error) {
	return c.chatbot.EndConversation(ctx, userID)
}
