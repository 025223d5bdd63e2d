package quiz

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"csshub/backend/models"
)

// SettingsDefaults apply when no settings row exists.
type SettingsDefaults struct {
	QuestionsPerTest int
	TimePerQuestion  int
}

const (
	minQuestionsPerTest = 5
	maxQuestionsPerTest = 100
	minTimePerQuestion  = 10
	maxTimePerQuestion  = 300
)

type Options struct {
	Limits   TierLimits
	Defaults SettingsDefaults
	Cache    ActiveTestCache
	Selector *Selector
	Logger   *log.Logger
	Now      func() time.Time
}

// Service is the quiz engine: quota, test generation, scoring and leaderboard.
type Service struct {
	store    Store
	limiter  *Limiter
	selector *Selector
	cache    ActiveTestCache
	scorer   *Scorer
	ranker   *Ranker
	defaults SettingsDefaults
	logger   *log.Logger
	now      func() time.Time

	locks keyedMutex
}

func NewService(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Limits == (TierLimits{}) {
		opts.Limits = DefaultTierLimits()
	}
	if opts.Defaults.QuestionsPerTest == 0 {
		opts.Defaults.QuestionsPerTest = 10
	}
	if opts.Defaults.TimePerQuestion == 0 {
		opts.Defaults.TimePerQuestion = 30
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache(opts.Now)
	}
	if opts.Selector == nil {
		opts.Selector = NewSelector()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	return &Service{
		store:    store,
		limiter:  NewLimiter(store, opts.Limits, opts.Now),
		selector: opts.Selector,
		cache:    opts.Cache,
		scorer:   NewScorer(store, opts.Cache, opts.Now),
		ranker:   NewRanker(store),
		defaults: opts.Defaults,
		logger:   opts.Logger,
		now:      opts.Now,
		locks:    keyedMutex{locks: make(map[string]*refMutex)},
	}
}

func (s *Service) CheckLimit(ctx context.Context, id Identity) (LimitStatus, error) {
	return s.limiter.CheckLimit(ctx, id)
}

// Settings returns the effective settings, clamped to their allowed ranges.
func (s *Service) Settings(ctx context.Context) (models.QuizSettings, error) {
	stored, err := s.store.FindSettings(ctx)
	if err != nil {
		return models.QuizSettings{}, fmt.Errorf("load quiz settings: %w", err)
	}
	settings := models.QuizSettings{
		ID:               models.SettingsID,
		QuestionsPerTest: s.defaults.QuestionsPerTest,
		TimePerQuestion:  s.defaults.TimePerQuestion,
	}
	if stored != nil {
		settings = *stored
	}
	settings.QuestionsPerTest = clamp(settings.QuestionsPerTest, minQuestionsPerTest, maxQuestionsPerTest)
	settings.TimePerQuestion = clamp(settings.TimePerQuestion, minTimePerQuestion, maxTimePerQuestion)
	return settings, nil
}

// GenerateTest returns the active test for id, category and language,
// drawing a new one (and spending one attempt) only when none is cached.
// Requests for the same identity are serialized so concurrent starts share
// one test and one attempt.
func (s *Service) GenerateTest(ctx context.Context, category, language string, id Identity) (TestPayload, error) {
	if err := checkCategory(category); err != nil {
		return TestPayload{}, err
	}
	if err := checkLanguage(language); err != nil {
		return TestPayload{}, err
	}

	unlock := s.locks.Lock(id.Key())
	defer unlock()

	key := CacheKey(id, category, language)
	if test, ok := s.cache.Get(key); ok {
		s.logger.Printf("quiz: active test reused for %s", key)
		return test, nil
	}

	status, err := s.limiter.CheckLimit(ctx, id)
	if err != nil {
		return TestPayload{}, err
	}
	if !status.Allowed {
		s.logger.Printf("quiz: %s rate limited (limit %d)", id, status.Limit)
		return TestPayload{}, &RateLimitError{Limit: status.Limit, ResetAt: status.ResetAt}
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return TestPayload{}, err
	}

	filter := QuestionFilter{Language: language}
	if category != AllCategories {
		filter.Category = category
	}
	pool, err := s.store.FindQuestionIDs(ctx, filter)
	if err != nil {
		return TestPayload{}, fmt.Errorf("load question pool: %w", err)
	}
	ids := s.selector.Select(pool, settings.QuestionsPerTest)
	if len(ids) == 0 {
		return TestPayload{}, ErrNoContent
	}

	questions, err := s.store.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return TestPayload{}, fmt.Errorf("load questions: %w", err)
	}
	localized := inOrder(ids, questions, language)
	if len(localized) == 0 {
		return TestPayload{}, ErrNoContent
	}

	if err := s.limiter.Increment(ctx, id); err != nil {
		return TestPayload{}, err
	}

	test := TestPayload{
		Category:        category,
		Language:        language,
		Questions:       localized,
		TimePerQuestion: settings.TimePerQuestion,
		TotalQuestions:  len(localized),
	}
	ttl := TestTTL(settings.TimePerQuestion, test.TotalQuestions, settings.QuestionsPerTest)
	test = s.cache.Put(key, test, ttl)

	s.logger.Printf("quiz: generated %d questions for %s (ttl %s)", test.TotalQuestions, key, ttl)
	return test, nil
}

// SubmitTest scores a submission, stores the result and ends the active test.
func (s *Service) SubmitTest(ctx context.Context, sub Submission) (SubmitResult, error) {
	res, err := s.scorer.Submit(ctx, sub)
	if err != nil {
		return SubmitResult{}, err
	}
	s.logger.Printf("quiz: %s scored %d/%d in %s", sub.Identity, res.Result.Score, res.Result.TotalQuestions, sub.Category)
	return res, nil
}

func (s *Service) ListLeaderboard(ctx context.Context, category string, limit int) ([]RankedEntry, error) {
	return s.ranker.Rank(ctx, category, limit)
}

// inOrder projects questions following ids, skipping ids that vanished
// between the two store reads.
func inOrder(ids []uint, questions []models.Question, language string) []LocalizedQuestion {
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]LocalizedQuestion, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, Project(q, language, false))
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// keyedMutex hands out one mutex per key and forgets it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
