package quiz

import (
	"sync"
	"time"
)

// MinTestTTL is the shortest time an active test is kept.
const MinTestTTL = 5 * time.Minute

// TestPayload is a generated test as handed to the client. It never contains answer keys.
type TestPayload struct {
	Category        string              `json:"category"`
	Language        string              `json:"language"`
	Questions       []LocalizedQuestion `json:"questions"`
	TimePerQuestion int                 `json:"time_per_question"`
	TotalQuestions  int                 `json:"total_questions"`
	ExpiresAt       time.Time           `json:"expires_at"`
}

// ActiveTestCache remembers the test currently in progress per
// identity, category and language. Implementations must be safe for
// concurrent use; a shared key-value store with TTL can replace MemoryCache.
type ActiveTestCache interface {
	Get(key string) (TestPayload, bool)
	// Put stores test and sets its ExpiresAt to now+ttl.
	Put(key string, test TestPayload, ttl time.Duration) TestPayload
	Invalidate(key string)
}

func CacheKey(id Identity, category, language string) string {
	return id.Key() + "|" + category + "|" + language
}

// TestTTL is timePerQuestion * max(totalQuestions, questionsPerTest) seconds,
// never less than MinTestTTL.
func TestTTL(timePerQuestion, totalQuestions, questionsPerTest int) time.Duration {
	n := max(totalQuestions, questionsPerTest)
	ttl := time.Duration(timePerQuestion) * time.Duration(n) * time.Second
	return max(ttl, MinTestTTL)
}

// MemoryCache is a process-local ActiveTestCache. Expired entries are swept
// on every access instead of by a background timer.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]TestPayload
	now     func() time.Time
}

func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		entries: make(map[string]TestPayload),
		now:     now,
	}
}

func (c *MemoryCache) Get(key string) (TestPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	test, ok := c.entries[key]
	return test, ok
}

func (c *MemoryCache) Put(key string, test TestPayload, ttl time.Duration) TestPayload {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	if ttl <= 0 {
		ttl = MinTestTTL
	}
	test.ExpiresAt = c.now().Add(ttl)
	c.entries[key] = test
	return test
}

func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	delete(c.entries, key)
}

// Len counts live entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	return len(c.entries)
}

func (c *MemoryCache) sweepLocked() {
	now := c.now()
	for key, test := range c.entries {
		if !test.ExpiresAt.After(now) {
			delete(c.entries, key)
		}
	}
}
