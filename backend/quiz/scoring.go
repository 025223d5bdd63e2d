package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"csshub/backend/models"
)

const GuestName = "Guest"

type Answer struct {
	QuestionID  uint `json:"question_id" validate:"required"`
	AnswerIndex int  `json:"answer_index" validate:"min=0"`
}

type Submission struct {
	Identity    Identity
	Category    string
	Language    string
	Answers     []Answer
	TimeTaken   int // seconds
	DisplayName string
}

// DetailedResult is per-question feedback for the submitter. It is not stored.
type DetailedResult struct {
	QuestionID     uint     `json:"question_id"`
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	SelectedIndex  int      `json:"selected_index"`
	SelectedAnswer string   `json:"selected_answer"`
	CorrectIndex   int      `json:"correct_index"`
	CorrectAnswer  string   `json:"correct_answer"`
	IsCorrect      bool     `json:"is_correct"`
	Explanation    string   `json:"explanation"`
}

type SubmitResult struct {
	Result          models.QuizResult `json:"result"`
	Percentage      int               `json:"percentage"`
	DetailedResults []DetailedResult  `json:"detailed_results"`
}

type scoringStore interface {
	QuestionStore
	ResultStore
	ProfileStore
}

// Scorer grades submissions against the stored questions and records one
// result per submission.
type Scorer struct {
	store scoringStore
	cache ActiveTestCache
	now   func() time.Time
}

func NewScorer(store scoringStore, cache ActiveTestCache, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{store: store, cache: cache, now: now}
}

func (s *Scorer) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	if err := checkCategory(sub.Category); err != nil {
		return SubmitResult{}, err
	}
	// Without a language the submission may belong to any active test for
	// the category, so every language entry is dropped; text falls back to en.
	invalidate := Languages()
	if sub.Language == "" {
		sub.Language = LangEN
	} else {
		if err := checkLanguage(sub.Language); err != nil {
			return SubmitResult{}, err
		}
		invalidate = []string{sub.Language}
	}
	ids, err := validateAnswers(sub)
	if err != nil {
		return SubmitResult{}, err
	}

	questions, err := s.store.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load submitted questions: %w", err)
	}
	if len(questions) != len(ids) {
		return SubmitResult{}, ErrQuestionsNotFound
	}
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	score := 0
	details := make([]DetailedResult, 0, len(sub.Answers))
	for _, answer := range sub.Answers {
		q, ok := byID[answer.QuestionID]
		if !ok {
			return SubmitResult{}, ErrQuestionsNotFound
		}
		correct := q.CorrectAnswerIndex == answer.AnswerIndex
		if correct {
			score++
		}
		details = append(details, detail(q, sub.Language, answer.AnswerIndex, correct))
	}

	name, profileID, err := s.displayName(ctx, sub)
	if err != nil {
		return SubmitResult{}, err
	}

	result := models.QuizResult{
		ProfileID:      profileID,
		DisplayName:    name,
		Category:       sub.Category,
		Language:       sub.Language,
		Score:          score,
		TotalQuestions: len(sub.Answers),
		TimeTaken:      sub.TimeTaken,
		CreatedAt:      s.now().UTC(),
	}
	if userID, ok := sub.Identity.UserID(); ok {
		result.UserID = &userID
	}
	if err := s.store.CreateResult(ctx, &result); err != nil {
		return SubmitResult{}, fmt.Errorf("save result: %w", err)
	}

	for _, lang := range invalidate {
		s.cache.Invalidate(CacheKey(sub.Identity, sub.Category, lang))
	}

	return SubmitResult{
		Result:          result,
		Percentage:      Percentage(result.Score, result.TotalQuestions),
		DetailedResults: details,
	}, nil
}

// displayName prefers the authenticated profile over the client-supplied name.
func (s *Scorer) displayName(ctx context.Context, sub Submission) (string, *uint, error) {
	if userID, ok := sub.Identity.UserID(); ok {
		user, err := s.store.FindUser(ctx, userID)
		if err != nil {
			return "", nil, fmt.Errorf("load profile: %w", err)
		}
		if user != nil {
			if name := user.PublicName(); name != "" {
				return name, &user.ID, nil
			}
		}
	}
	if name := strings.TrimSpace(sub.DisplayName); name != "" {
		return name, nil, nil
	}
	return GuestName, nil, nil
}

func validateAnswers(sub Submission) ([]uint, error) {
	if len(sub.Answers) == 0 {
		return nil, fmt.Errorf("%w: no answers", ErrInvalidSubmission)
	}
	if sub.TimeTaken < 0 {
		return nil, fmt.Errorf("%w: negative time", ErrInvalidSubmission)
	}
	seen := make(map[uint]struct{}, len(sub.Answers))
	ids := make([]uint, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		if a.AnswerIndex < 0 {
			return nil, fmt.Errorf("%w: negative answer index", ErrInvalidSubmission)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %d answered twice", ErrInvalidSubmission, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}
	return ids, nil
}

func detail(q models.Question, lang string, selected int, correct bool) DetailedResult {
	view := Project(q, lang, true)
	return DetailedResult{
		QuestionID:     q.ID,
		Question:       view.Text,
		Answers:        view.Answers,
		SelectedIndex:  selected,
		SelectedAnswer: answerAt(view.Answers, selected),
		CorrectIndex:   view.AnswerKey.CorrectAnswerIndex,
		CorrectAnswer:  answerAt(view.Answers, view.AnswerKey.CorrectAnswerIndex),
		IsCorrect:      correct,
		Explanation:    view.AnswerKey.Explanation,
	}
}

func answerAt(answers []string, idx int) string {
	if idx < 0 || idx >= len(answers) {
		return ""
	}
	return answers[idx]
}
