package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	User       User       `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Active reports whether the conversation has not been ended yet.
func (c *Conversation) Active() bool {
	return c.FinishedAt == nil
}

type Message struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index"`
	Text           string    `json:"text" gorm:"type:text;not null"`
	Timestamp      time.Time `json:"timestamp" gorm:"not null;index"`
	IsUser         bool      `json:"is_user" gorm:"not null"`
	Intent         *string   `json:"intent,omitempty" gorm:"type:varchar(50)"`
	AgentType      *string   `json:"agent_type,omitempty" gorm:"type:varchar(20)"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
