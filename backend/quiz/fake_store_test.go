package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"csshub/backend/models"
)

var errStoreDown = errors.New("store unreachable")

type fakeStore struct {
	mu sync.Mutex

	questions map[uint]models.Question
	settings  *models.QuizSettings
	results   []models.QuizResult
	counters  map[string]*models.AttemptCounter
	users     map[uint]models.User

	poolErr      error
	questionsErr error
	createErr    error
	incrementErr error

	poolCalls      int
	incrementCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		questions: make(map[uint]models.Question),
		counters:  make(map[string]*models.AttemptCounter),
		users:     make(map[uint]models.User),
	}
}

func (f *fakeStore) addQuestions(category string, n int) []uint {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		id := uint(len(f.questions) + 1)
		q := models.Question{
			Category:           category,
			Difficulty:         "easy",
			TextEn:             "Question",
			TextRu:             "Вопрос",
			AnswersEn:          []string{"a", "b", "c", "d"},
			AnswersRu:          []string{"а", "б", "в", "г"},
			CorrectAnswerIndex: int(id % 4),
			ExplanationEn:      "because",
		}
		q.ID = id
		f.questions[id] = q
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeStore) FindQuestionIDs(_ context.Context, filter QuestionFilter) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.poolCalls++
	if f.poolErr != nil {
		return nil, f.poolErr
	}
	var ids []uint
	for id, q := range f.questions {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Language == LangEN && q.TextEn == "" || filter.Language == LangRU && q.TextRu == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) FindQuestionsByIDs(_ context.Context, ids []uint) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.questionsErr != nil {
		return nil, f.questionsErr
	}
	var out []models.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, q)
		}
	}
	// natural store order, not request order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindSettings(context.Context) (*models.QuizSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, nil
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeStore) CreateResult(_ context.Context, result *models.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	result.ID = uint(len(f.results) + 1)
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeStore) FindResults(_ context.Context, filter ResultFilter) ([]models.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.QuizResult
	for _, r := range f.results {
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.UserID != nil && (r.UserID == nil || *r.UserID != *filter.UserID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) FindOrCreateAttemptCounter(_ context.Context, id Identity, day string) (*models.AttemptCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := id.Key() + "@" + day
	c, ok := f.counters[key]
	if !ok {
		c = &models.AttemptCounter{ID: uint(len(f.counters) + 1), IdentityKey: id.Key(), Day: day}
		f.counters[key] = c
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) IncrementCounter(_ context.Context, counter *models.AttemptCounter) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.incrementCalls++
	c := f.counters[counter.IdentityKey+"@"+counter.Day]
	c.Count++
	counter.Count = c.Count
	return nil
}

func (f *fakeStore) FindUser(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
