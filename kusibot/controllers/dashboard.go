package controllers

import (
	"context"

	"github.com/didierrc/KusiBot/kusibot/services"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

func (c *DashboardController) ChatUsers(ctx context.Context) ([]services.ChatUser, error) {
	return c.dashboard.GetChatUsers(ctx)
}

func (c *DashboardController) Conversations(ctx context.Context, userID uint) ([]services.ConversationView, error) {
	return c.dashboard.GetConversationsForUser(ctx, userID)
}

func (c *DashboardController) Messages(ctx context.Context, convID uint) ([]services.DashboardMessage, error) {
	return c.dashboard.GetConversationMessages(ctx, convID)
}

func (c *DashboardController) Assessments(ctx context.Context, userID uint) ([]services.AssessmentView, error) {
	return c.dashboard.GetAssessmentsForUser(ctx, userID)
}

func (c *DashboardController) ExportConversation(ctx context.Context, convID uint) (string, error) {
	return c.dashboard.ExportConversation(ctx, convID)
}
