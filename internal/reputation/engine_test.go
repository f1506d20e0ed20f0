package reputation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurral/feedengine/internal/domain"
)

// memStore is a minimal in-package Store double; the real adapters live
// in internal/store.
type memStore struct {
	mu     sync.Mutex
	scores map[string]domain.KurralScore
}

func newMemStore() *memStore {
	return &memStore{scores: make(map[string]domain.KurralScore)}
}

func (m *memStore) LoadScore(ctx context.Context, authorID string) (domain.KurralScore, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ks, ok := m.scores[authorID]
	return ks, ok, nil
}

func (m *memStore) SaveScore(ctx context.Context, ks domain.KurralScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[ks.AuthorID] = ks
	return nil
}

var repNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T) (*Engine, *memStore) {
	t.Helper()
	store := newMemStore()
	engine := NewEngine(DefaultConfig(), store).WithClock(func() time.Time { return repNow })
	return engine, store
}

func TestNewAuthorStartsNeutral(t *testing.T) {
	engine, _ := testEngine(t)
	ks, err := engine.CurrentScore(context.Background(), "author-1")
	require.NoError(t, err)
	assert.Equal(t, "author-1", ks.AuthorID)
	assert.InDelta(t, 50.0, ks.Score, 0.001, "neutral components should land at the midpoint")
	assert.Empty(t, ks.History)
}

func TestContributionRaisesScore(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	before, err := engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)

	after, err := engine.RecordContribution(ctx, "author-1", Contribution{
		ChirpID:    "p1",
		ValueTotal: 0.9,
		Engagement: 0.7,
		At:         repNow,
	})
	require.NoError(t, err)
	assert.Greater(t, after.Score, before.Score)
	assert.Len(t, after.History, 1)
	assert.Equal(t, repNow, after.LastUpdated)
}

func TestViolationLowersScore(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	before, err := engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)

	after, err := engine.RecordViolation(ctx, "author-1", Violation{
		ChirpID: "p1", Severity: 1, Reason: "blocked by fact-check policy", At: repNow,
	})
	require.NoError(t, err)
	assert.Less(t, after.Score, before.Score)
	assert.Equal(t, "blocked by fact-check policy", after.History[0].Reason)
}

func TestScoreBoundsUnderEventStorm(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	// Alternate hard violations and perfect contributions; the score
	// must stay inside [0,100] at every step.
	at := repNow
	for i := 0; i < 40; i++ {
		at = at.Add(time.Hour)
		var ks domain.KurralScore
		var err error
		if i%2 == 0 {
			ks, err = engine.RecordViolation(ctx, "author-1", Violation{ChirpID: fmt.Sprintf("p%d", i), Severity: 1, At: at})
		} else {
			ks, err = engine.RecordContribution(ctx, "author-1", Contribution{ChirpID: fmt.Sprintf("p%d", i), ValueTotal: 1, Engagement: 1, At: at})
		}
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ks.Score, 0.0)
		assert.LessOrEqual(t, ks.Score, 100.0)
	}
}

func TestDecayRecovers(t *testing.T) {
	store := newMemStore()
	now := repNow
	engine := NewEngine(DefaultConfig(), store).WithClock(func() time.Time { return now })
	ctx := context.Background()

	hit, err := engine.RecordViolation(ctx, "author-1", Violation{ChirpID: "p1", Severity: 1, At: repNow})
	require.NoError(t, err)

	// Four weeks later with no further events the violation influence
	// has decayed and the score has strictly recovered.
	now = repNow.Add(28 * 24 * time.Hour)
	later, err := engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)
	assert.Greater(t, later.Score, hit.Score)
	assert.Less(t, later.Components.ViolationHistory, hit.Components.ViolationHistory)
}

func TestDecayIsMonotonic(t *testing.T) {
	store := newMemStore()
	now := repNow
	engine := NewEngine(DefaultConfig(), store).WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := engine.RecordViolation(ctx, "author-1", Violation{ChirpID: "p1", Severity: 1, At: repNow})
	require.NoError(t, err)

	prevViolation := 101.0
	for _, days := range []int{1, 3, 7, 14, 30, 90} {
		now = repNow.Add(time.Duration(days) * 24 * time.Hour)
		ks, err := engine.CurrentScore(ctx, "author-1")
		require.NoError(t, err)
		assert.Less(t, ks.Components.ViolationHistory, prevViolation,
			"violation influence must strictly shrink over %d days", days)
		prevViolation = ks.Components.ViolationHistory
	}
}

func TestCurrentScoreIsPureRead(t *testing.T) {
	store := newMemStore()
	now := repNow
	engine := NewEngine(DefaultConfig(), store).WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := engine.RecordViolation(ctx, "author-1", Violation{ChirpID: "p1", Severity: 1, At: repNow})
	require.NoError(t, err)
	stored := store.scores["author-1"]

	now = repNow.Add(10 * 24 * time.Hour)
	_, err = engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, stored, store.scores["author-1"], "reads must not persist decay")
}

func TestHistoryBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCap = 5
	store := newMemStore()
	engine := NewEngine(cfg, store).WithClock(func() time.Time { return repNow })
	ctx := context.Background()

	at := repNow
	for i := 0; i < 20; i++ {
		at = at.Add(time.Minute)
		_, err := engine.RecordContribution(ctx, "author-1", Contribution{ChirpID: fmt.Sprintf("p%d", i), ValueTotal: 0.8, At: at})
		require.NoError(t, err)
	}
	ks, err := engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)
	require.Len(t, ks.History, 5)
	assert.Equal(t, "contribution p19", ks.History[4].Reason, "newest snapshot kept, oldest dropped")
}

func TestConcurrentSameAuthorLosesNothing(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := engine.RecordContribution(ctx, "author-1", Contribution{
				ChirpID: fmt.Sprintf("p%d", i), ValueTotal: 0.8, At: repNow.Add(time.Duration(i) * time.Second),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ks, err := engine.CurrentScore(ctx, "author-1")
	require.NoError(t, err)
	assert.Len(t, ks.History, writers, "every concurrent contribution must land in history")
}

func TestEligibleForReview(t *testing.T) {
	engine, _ := testEngine(t)
	assert.False(t, engine.EligibleForReview(domain.KurralScore{Score: 69.9}))
	assert.True(t, engine.EligibleForReview(domain.KurralScore{Score: 70}))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.ContributionGain = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.HistoryCap = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.ViolationHalfLife = 0
	assert.Error(t, bad.Validate())
}
