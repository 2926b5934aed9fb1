package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

// GetActiveConversationByUserID returns the single unfinished
// conversation for the user, or nil when there is none.
func (dao *ConversationDAO) GetActiveConversationByUserID(ctx context.Context, userID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).
		Where("user_id = ? AND finished_at IS NULL", userID).
		First(&conv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).First(&conv, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) CreateConversation(ctx context.Context, userID uint) (*models.Conversation, error) {
	conv := models.Conversation{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	err := dao.DB.WithContext(ctx).Create(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) EndConversation(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return dao.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("finished_at", &now).Error
}

func (dao *ConversationDAO) GetAllConversationsByUserID(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (dao *ConversationDAO) SaveUserMessage(ctx context.Context, convID uint, text string, intent *string) (*models.Message, error) {
	msg := models.Message{
		ConversationID: convID,
		Text:           text,
		IsUser:         true,
		Intent:         intent,
	}
	err := dao.DB.WithContext(ctx).Create(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *ConversationDAO) SaveBotMessage(ctx context.Context, convID uint, text string, intent *string, agentType string) (*models.Message, error) {
	msg := models.Message{
		ConversationID: convID,
		Text:           text,
		IsUser:         false,
		Intent:         intent,
		AgentType:      &agentType,
	}
	err := dao.DB.WithContext(ctx).Create(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetRecentMessages returns up to limit messages, newest first.
// Callers wanting a transcript reverse the slice themselves.
func (dao *ConversationDAO) GetRecentMessages(ctx context.Context, convID uint, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (dao *ConversationDAO) GetMessagesByConversationID(ctx context.Context, convID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("timestamp ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
