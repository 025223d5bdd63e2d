package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"csshub/backend/models"
	"csshub/backend/quiz"
	"csshub/backend/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

func seedQuestion(t *testing.T, db *gorm.DB, category, textEn, textRu string) models.Question {
	t.Helper()
	q := models.Question{
		Category:           category,
		Difficulty:         "easy",
		TextEn:             textEn,
		TextRu:             textRu,
		AnswersEn:          []string{"one", "two"},
		AnswersRu:          []string{"один", "два"},
		CorrectAnswerIndex: 1,
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

func TestFindQuestionIDsFilters(t *testing.T) {
	db := newTestDB(t)
	s := NewQuizStore(db)
	ctx := context.Background()

	a := seedQuestion(t, db, "grid", "A", "А")
	b := seedQuestion(t, db, "grid", "B", "")
	c := seedQuestion(t, db, "flexbox", "C", "С")

	ids, err := s.FindQuestionIDs(ctx, quiz.QuestionFilter{Category: "grid", Language: quiz.LangEN})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, ids)

	ids, err = s.FindQuestionIDs(ctx, quiz.QuestionFilter{Category: "grid", Language: quiz.LangRU})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids)

	ids, err = s.FindQuestionIDs(ctx, quiz.QuestionFilter{Language: quiz.LangRU})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, c.ID}, ids)
}

func TestFindQuestionsByIDsRoundTripsAnswers(t *testing.T) {
	db := newTestDB(t)
	s := NewQuizStore(db)
	q := seedQuestion(t, db, "grid", "A", "А")

	got, err := s.FindQuestionsByIDs(context.Background(), []uint{q.ID, 999})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"one", "two"}, []string(got[0].AnswersEn))
	assert.Equal(t, []string{"один", "два"}, []string(got[0].AnswersRu))

	got, err = s.FindQuestionsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettingsSingleton(t *testing.T) {
	s := NewQuizStore(newTestDB(t))
	ctx := context.Background()

	settings, err := s.FindSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, s.SaveSettings(ctx, &models.QuizSettings{QuestionsPerTest: 15, TimePerQuestion: 45}))
	require.NoError(t, s.SaveSettings(ctx, &models.QuizSettings{QuestionsPerTest: 20, TimePerQuestion: 45}))

	settings, err = s.FindSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 20, settings.QuestionsPerTest)

	var count int64
	s.DB.Model(&models.QuizSettings{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAttemptCounterLifecycle(t *testing.T) {
	s := NewQuizStore(newTestDB(t))
	ctx := context.Background()
	anon := quiz.Anonymous("192.0.2.10")
	user := quiz.Authenticated(4, models.TierFree)

	c1, err := s.FindOrCreateAttemptCounter(ctx, anon, "2026-06-01")
	require.NoError(t, err)
	assert.Zero(t, c1.Count)
	require.NotNil(t, c1.IPAddress)
	assert.Equal(t, "192.0.2.10", *c1.IPAddress)
	assert.Nil(t, c1.UserID)

	require.NoError(t, s.IncrementCounter(ctx, c1))
	require.NoError(t, s.IncrementCounter(ctx, c1))
	assert.Equal(t, 2, c1.Count)

	again, err := s.FindOrCreateAttemptCounter(ctx, anon, "2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, again.ID)
	assert.Equal(t, 2, again.Count)

	nextDay, err := s.FindOrCreateAttemptCounter(ctx, anon, "2026-06-02")
	require.NoError(t, err)
	assert.Zero(t, nextDay.Count)

	uc, err := s.FindOrCreateAttemptCounter(ctx, user, "2026-06-01")
	require.NoError(t, err)
	require.NotNil(t, uc.UserID)
	assert.Equal(t, uint(4), *uc.UserID)
	assert.Nil(t, uc.IPAddress)

	purged, err := s.PurgeAttemptCounters(ctx, "2026-06-02")
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestFindResultsOrdering(t *testing.T) {
	s := NewQuizStore(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	uid := uint(8)

	rows := []models.QuizResult{
		{DisplayName: "a", Category: "grid", Score: 5, TotalQuestions: 10, TimeTaken: 50, CreatedAt: base},
		{DisplayName: "b", Category: "grid", Score: 7, TotalQuestions: 10, TimeTaken: 90, CreatedAt: base},
		{DisplayName: "c", Category: "grid", Score: 7, TotalQuestions: 10, TimeTaken: 60, CreatedAt: base},
		{DisplayName: "d", Category: "grid", Score: 7, TotalQuestions: 10, TimeTaken: 60, CreatedAt: base.Add(time.Minute), UserID: &uid},
		{DisplayName: "e", Category: "flexbox", Score: 9, TotalQuestions: 10, TimeTaken: 10, CreatedAt: base},
	}
	for i := range rows {
		require.NoError(t, s.CreateResult(ctx, &rows[i]))
	}

	got, err := s.FindResults(ctx, quiz.ResultFilter{Category: "grid"})
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.DisplayName
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, names)

	got, err = s.FindResults(ctx, quiz.ResultFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].DisplayName)

	got, err = s.FindResults(ctx, quiz.ResultFilter{Order: quiz.OrderRecent, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "d", got[0].DisplayName)
}

func TestFindUser(t *testing.T) {
	db := newTestDB(t)
	s := NewQuizStore(db)
	u := models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	got, err := s.FindUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada", got.Username)

	got, err = s.FindUser(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPromoteResults(t *testing.T) {
	db := newTestDB(t)
	s := NewQuizStore(db)
	ctx := context.Background()
	u := models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x", DisplayName: "Ada"}
	require.NoError(t, db.Create(&u).Error)

	for _, category := range []string{"grid", "flexbox"} {
		r := models.QuizResult{UserID: &u.ID, DisplayName: "old", Category: category, Score: 2, TotalQuestions: 10, CreatedAt: time.Now()}
		require.NoError(t, s.CreateResult(ctx, &r))
	}

	n, err := s.PromoteResults(ctx, "ada@example.com", "grid")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.FindResults(ctx, quiz.ResultFilter{Category: "grid"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Score)
	assert.Equal(t, "Ada", got[0].DisplayName)

	_, err = s.PromoteResults(ctx, "nobody@example.com", "")
	assert.Error(t, err)
}

func TestServiceOverGormStore(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 12; i++ {
		seedQuestion(t, db, "grid", "Q", "В")
	}
	svc := quiz.NewService(NewQuizStore(db), quiz.Options{})
	ctx := context.Background()
	id := quiz.Anonymous("198.51.100.2")

	test, err := svc.GenerateTest(ctx, "grid", quiz.LangRU, id)
	require.NoError(t, err)
	assert.Equal(t, 10, test.TotalQuestions)

	status, err := svc.CheckLimit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Remaining)

	answers := make([]quiz.Answer, 0, len(test.Questions))
	for _, q := range test.Questions {
		answers = append(answers, quiz.Answer{QuestionID: q.ID, AnswerIndex: 1})
	}
	res, err := svc.SubmitTest(ctx, quiz.Submission{Identity: id, Category: "grid", Language: quiz.LangRU, Answers: answers, TimeTaken: 33, DisplayName: "Kim"})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Result.Score)
	assert.NotZero(t, res.Result.ID)

	board, err := svc.ListLeaderboard(ctx, "grid", 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Kim", board[0].DisplayName)
	assert.Equal(t, 100, board[0].Percentage)
}
