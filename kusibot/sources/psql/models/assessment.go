package models

import "time"

// Assessment state tags. The assessment engine is the only writer of
// CurrentState; see kusibot/chatbot/assessment.
const (
	StateAskingQuestion        = "asking_question"
	StateWaitingFreeText       = "waiting_free_text"
	StateWaitingCategorization = "waiting_categorization"
	StateFinished              = "finished"
)

type Assessment struct {
	ID              uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint       `json:"user_id" gorm:"not null;index"`
	User            User       `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	AssessmentType  string     `json:"assessment_type" gorm:"type:varchar(20);not null"`
	MessageTrigger  string     `json:"message_trigger" gorm:"type:text"`
	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	CurrentQuestion int        `json:"current_question" gorm:"not null;default:1"`
	CurrentState    string     `json:"current_state" gorm:"type:varchar(30);not null"`
	LastFreeText    *string    `json:"last_free_text,omitempty" gorm:"type:text"`
	TotalScore      *int       `json:"total_score,omitempty"`
	Interpretation  *string    `json:"interpretation,omitempty" gorm:"type:varchar(100)"`
}

// Active reports whether the assessment is still being administered.
func (a *Assessment) Active() bool {
	return a.EndTime == nil
}

type AssessmentQuestion struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AssessmentID     uint      `json:"assessment_id" gorm:"not null;index"`
	QuestionNumber   int       `json:"question_number" gorm:"not null"`
	QuestionText     string    `json:"question_text" gorm:"type:text;not null"`
	UserResponse     string    `json:"user_response" gorm:"type:text;not null"`
	CategorizedValue int       `json:"categorized_value" gorm:"not null"`
	Timestamp        time.Time `json:"timestamp" gorm:"not null"`
}
