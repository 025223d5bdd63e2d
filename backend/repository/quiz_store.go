package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csshub/backend/models"
	"csshub/backend/quiz"
)

// QuizStore is the GORM implementation of quiz.Store.
type QuizStore struct {
	DB *gorm.DB
}

var _ quiz.Store = (*QuizStore)(nil)

func NewQuizStore(db *gorm.DB) *QuizStore {
	return &QuizStore{DB: db}
}

func (s *QuizStore) FindQuestionIDs(ctx context.Context, filter quiz.QuestionFilter) ([]uint, error) {
	query := s.DB.WithContext(ctx).Model(&models.Question{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	switch filter.Language {
	case quiz.LangEN:
		query = query.Where("text_en <> ''")
	case quiz.LangRU:
		query = query.Where("text_ru <> ''")
	}

	var ids []uint
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find question ids: %w", err)
	}
	return ids, nil
}

func (s *QuizStore) FindQuestionsByIDs(ctx context.Context, ids []uint) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []models.Question
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	return questions, nil
}

func (s *QuizStore) FindSettings(ctx context.Context) (*models.QuizSettings, error) {
	var settings models.QuizSettings
	err := s.DB.WithContext(ctx).First(&settings, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings upserts the singleton settings row.
func (s *QuizStore) SaveSettings(ctx context.Context, settings *models.QuizSettings) error {
	settings.ID = models.SettingsID
	if err := s.DB.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *QuizStore) CreateResult(ctx context.Context, result *models.QuizResult) error {
	if err := s.DB.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

func (s *QuizStore) FindResults(ctx context.Context, filter quiz.ResultFilter) ([]models.QuizResult, error) {
	query := s.DB.WithContext(ctx).Model(&models.QuizResult{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	switch filter.Order {
	case quiz.OrderRecent:
		query = query.Order("created_at DESC").Order("id DESC")
	default:
		query = query.Order("score DESC").Order("time_taken ASC").Order("created_at DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var results []models.QuizResult
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	return results, nil
}

// FindOrCreateAttemptCounter relies on the (identity_key, day) unique index so
// concurrent first attempts end up on the same row.
func (s *QuizStore) FindOrCreateAttemptCounter(ctx context.Context, id quiz.Identity, day string) (*models.AttemptCounter, error) {
	counter := models.AttemptCounter{
		IdentityKey: id.Key(),
		Day:         day,
	}
	if userID, ok := id.UserID(); ok {
		counter.UserID = &userID
	} else {
		ip := id.IP()
		counter.IPAddress = &ip
	}

	db := s.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_key"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&counter).Error
	if err != nil {
		return nil, fmt.Errorf("create attempt counter: %w", err)
	}

	var stored models.AttemptCounter
	if err := db.Where("identity_key = ? AND day = ?", counter.IdentityKey, day).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("find attempt counter: %w", err)
	}
	return &stored, nil
}

func (s *QuizStore) IncrementCounter(ctx context.Context, counter *models.AttemptCounter) error {
	db := s.DB.WithContext(ctx)
	err := db.Model(&models.AttemptCounter{}).
		Where("id = ?", counter.ID).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + ?", 1),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("increment attempt counter: %w", err)
	}
	if err := db.Model(&models.AttemptCounter{}).Select("count").Where("id = ?", counter.ID).Scan(&counter.Count).Error; err != nil {
		return fmt.Errorf("reload attempt counter: %w", err)
	}
	return nil
}

func (s *QuizStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// PurgeAttemptCounters deletes counters for days before the given one.
func (s *QuizStore) PurgeAttemptCounters(ctx context.Context, before string) (int64, error) {
	res := s.DB.WithContext(ctx).Where("day < ?", before).Delete(&models.AttemptCounter{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge attempt counters: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PromoteResults rewrites every result of the user with the given email to a
// full score under their current public name. Used by the seed script only.
func (s *QuizStore) PromoteResults(ctx context.Context, email, category string) (int64, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return 0, fmt.Errorf("find user %s: %w", email, err)
	}

	query := s.DB.WithContext(ctx).Model(&models.QuizResult{}).Where("user_id = ?", user.ID)
	if category != "" && category != quiz.AllCategories {
		query = query.Where("category = ?", category)
	}
	res := query.Updates(map[string]interface{}{
		"score":        gorm.Expr("total_questions"),
		"display_name": user.PublicName(),
		"profile_id":   user.ID,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("promote results: %w", res.Error)
	}
	return res.RowsAffected, nil
}
