package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrExportUnavailable    = errors.New("export storage not configured")
)

// DashboardUserStore lists the users a professional can monitor.
type DashboardUserStore interface {
	GetNonProfessionalUsers(ctx context.Context) ([]models.User, error)
}

// DashboardConversationStore reads conversation history for review.
type DashboardConversationStore interface {
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	GetAllConversationsByUserID(ctx context.Context, userID uint) ([]models.Conversation, error)
	GetMessagesByConversationID(ctx context.Context, convID uint) ([]models.Message, error)
}

// DashboardAssessmentStore reads completed and ongoing screenings.
type DashboardAssessmentStore interface {
	GetAssessmentsByUserID(ctx context.Context, userID uint) ([]models.Assessment, error)
	GetQuestionsByAssessmentID(ctx context.Context, assessmentID uint) ([]models.AssessmentQuestion, error)
}

// ExportStorage persists transcript exports outside the database.
type ExportStorage interface {
	UploadJSON(ctx context.Context, objectName string, payload interface{}) (string, error)
}

type ChatUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type ConversationView struct {
	ID         uint       `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type DashboardMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsUser    bool      `json:"is_user"`
	Intent    *string   `json:"intent,omitempty"`
}

type AssessmentAnswer struct {
	QuestionNumber   int       `json:"question_number"`
	QuestionText     string    `json:"question_text"`
	UserResponse     string    `json:"user_response"`
	CategorizedValue int       `json:"categorized_value"`
	Timestamp        time.Time `json:"timestamp"`
}

type AssessmentView struct {
	ID             uint               `json:"id"`
	AssessmentType string             `json:"assessment_type"`
	MessageTrigger string             `json:"message_trigger"`
	StartTime      time.Time          `json:"start_time"`
	EndTime        *time.Time         `json:"end_time,omitempty"`
	TotalScore     *int               `json:"total_score,omitempty"`
	Interpretation *string            `json:"interpretation,omitempty"`
	Answers        []AssessmentAnswer `json:"answers"`
}

// DashboardService backs the professional monitoring views.
type DashboardService struct {
	users       DashboardUserStore
	convs       DashboardConversationStore
	assessments DashboardAssessmentStore
	storage     ExportStorage
}

func NewDashboardService(users DashboardUserStore, convs DashboardConversationStore, assessments DashboardAssessmentStore, storage ExportStorage) *DashboardService {
	return &DashboardService{users: users, convs: convs, assessments: assessments, storage: storage}
}

func (s *DashboardService) GetChatUsers(ctx context.Context) ([]ChatUser, error) {
	users, err := s.users.GetNonProfessionalUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChatUser, 0, len(users))
	for _, u := range users {
		out = append(out, ChatUser{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

func (s *DashboardService) GetConversationsForUser(ctx context.Context, userID uint) ([]ConversationView, error) {
	convs, err := s.convs.GetAllConversationsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		out = append(out, ConversationView{ID: c.ID, CreatedAt: c.CreatedAt, FinishedAt: c.FinishedAt})
	}
	return out, nil
}

func (s *DashboardService) GetConversationMessages(ctx context.Context, convID uint) ([]DashboardMessage, error) {
	messages, err := s.convs.GetMessagesByConversationID(ctx, convID)
	if err != nil {
		return nil, err
	}
	out := make([]DashboardMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, DashboardMessage{
			ID:        m.ID.String(),
			Text:      m.Text,
			Timestamp: m.Timestamp,
			IsUser:    m.IsUser,
			Intent:    m.Intent,
		})
	}
	return out, nil
}

func (s *DashboardService) GetAssessmentsForUser(ctx context.Context, userID uint) ([]AssessmentView, error) {
	assessments, err := s.assessments.GetAssessmentsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AssessmentView, 0, len(assessments))
	for _, a := range assessments {
		questions, err := s.assessments.GetQuestionsByAssessmentID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		answers := make([]AssessmentAnswer, 0, len(questions))
		for _, q := range questions {
			answers = append(answers, AssessmentAnswer{
				QuestionNumber:   q.QuestionNumber,
				QuestionText:     q.QuestionText,
				UserResponse:     q.UserResponse,
				CategorizedValue: q.CategorizedValue,
				Timestamp:        q.Timestamp,
			})
		}
		out = append(out, AssessmentView{
			ID:             a.ID,
			AssessmentType: a.AssessmentType,
			MessageTrigger: a.MessageTrigger,
			StartTime:      a.StartTime,
			EndTime:        a.EndTime,
			TotalScore:     a.TotalScore,
			Interpretation: a.Interpretation,
			Answers:        answers,
		})
	}
	return out, nil
}

// ExportConversation uploads a conversation transcript as a JSON
// object and returns its location.
func (s *DashboardService) ExportConversation(ctx context.Context, convID uint) (string, error) {
	if s.storage == nil {
		return "", ErrExportUnavailable
	}
	conv, err := s.convs.GetConversation(ctx, convID)
	if err != nil {
		return "", err
	}
	if conv == nil {
		return "", ErrConversationNotFound
	}
	messages, err := s.GetConversationMessages(ctx, convID)
	if err != nil {
		return "", err
	}

	payload := struct {
		Conversation ConversationView   `json:"conversation"`
		Messages     []DashboardMessage `json:"messages"`
		ExportedAt   time.Time          `json:"exported_at"`
	}{
		Conversation: ConversationView{ID: conv.ID, CreatedAt: conv.CreatedAt, FinishedAt: conv.FinishedAt},
		Messages:     messages,
		ExportedAt:   time.Now().UTC(),
	}

	objectName := fmt.Sprintf("conversations/%d/%s.json", conv.ID, time.Now().UTC().Format("20060102150405"))
	return s.storage.UploadJSON(ctx, objectName, payload)
}
