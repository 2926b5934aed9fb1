package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

// AssessmentUpdates enumerates the only assessment fields the engine is
// allowed to change. Pointer fields left nil are not touched;
// ClearLastFreeText sets last_free_text back to NULL.
type AssessmentUpdates struct {
	CurrentState      *string
	CurrentQuestion   *int
	LastFreeText      *string
	ClearLastFreeText bool
	EndTime           *time.Time
	TotalScore        *int
	Interpretation    *string
}

type AssessmentDAO struct {
	DB *gorm.DB
}

func NewAssessmentDAO(db *gorm.DB) *AssessmentDAO {
	return &AssessmentDAO{DB: db}
}

// GetActiveAssessmentByUserID returns the single open assessment for
// the user, or nil when there is none.
func (dao *AssessmentDAO) GetActiveAssessmentByUserID(ctx context.Context, userID uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := dao.DB.WithContext(ctx).
		Where("user_id = ? AND end_time IS NULL", userID).
		First(&assessment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (dao *AssessmentDAO) GetAssessment(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := dao.DB.WithContext(ctx).First(&assessment, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (dao *AssessmentDAO) CreateAssessment(ctx context.Context, userID uint, assessmentType, messageTrigger, state string) (*models.Assessment, error) {
	assessment := models.Assessment{
		UserID:          userID,
		AssessmentType:  assessmentType,
		MessageTrigger:  messageTrigger,
		StartTime:       time.Now().UTC(),
		CurrentQuestion: 1,
		CurrentState:    state,
	}
	err := dao.DB.WithContext(ctx).Create(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (dao *AssessmentDAO) UpdateAssessment(ctx context.Context, id uint, updates AssessmentUpdates) error {
	fields := map[string]interface{}{}
	if updates.CurrentState != nil {
		fields["current_state"] = *updates.CurrentState
	}
	if updates.CurrentQuestion != nil {
		fields["current_question"] = *updates.CurrentQuestion
	}
	if updates.LastFreeText != nil {
		fields["last_free_text"] = *updates.LastFreeText
	} else if updates.ClearLastFreeText {
		fields["last_free_text"] = nil
	}
	if updates.EndTime != nil {
		fields["end_time"] = *updates.EndTime
	}
	if updates.TotalScore != nil {
		fields["total_score"] = *updates.TotalScore
	}
	if updates.Interpretation != nil {
		fields["interpretation"] = *updates.Interpretation
	}
	if len(fields) == 0 {
		return nil
	}
	return dao.DB.WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SumCategorizedValues totals the recorded answer values. An assessment
// with no recorded answers sums to 0.
func (dao *AssessmentDAO) SumCategorizedValues(ctx context.Context, assessmentID uint) (int, error) {
	var total int
	err := dao.DB.WithContext(ctx).
		Model(&models.AssessmentQuestion{}).
		Where("assessment_id = ?", assessmentID).
		Select("COALESCE(SUM(categorized_value), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (dao *AssessmentDAO) SaveAssessmentQuestion(ctx context.Context, assessmentID uint, questionNumber int, questionText, userResponse string, categorizedValue int) error {
	record := models.AssessmentQuestion{
		AssessmentID:     assessmentID,
		QuestionNumber:   questionNumber,
		QuestionText:     questionText,
		UserResponse:     userResponse,
		CategorizedValue: categorizedValue,
		Timestamp:        time.Now().UTC(),
	}
	return dao.DB.WithContext(ctx).Create(&record).Error
}

func (dao *AssessmentDAO) GetQuestionsByAssessmentID(ctx context.Context, assessmentID uint) ([]models.AssessmentQuestion, error) {
	var questions []models.AssessmentQuestion
	err := dao.DB.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("question_number ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (dao *AssessmentDAO) GetAssessmentsByUserID(ctx context.Context, userID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}
