package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

type recordingBus struct {
	mu     sync.Mutex
	events []Event
}

func (b *recordingBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) named(name string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Event
	for _, ev := range b.events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	repos    repos.Set
	bus      *recordingBus
	jobs     JobService
	estimate EstimationService
	outcomes OutcomeService
	results  ResultsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	bus := &recordingBus{}
	metrics := observability.New()

	cfg := DefaultEstimationConfig()
	cfg.Seed = 7
	cfg.Effect.Forest.Trees = 25

	store := aggregates.NewResultStore(aggregates.ResultStoreDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)},
		Effects:  set.Effects,
		Paths:    set.PathSummaries,
		Partners: set.PartnerSummaries,
	})
	jobs := NewJobService(db, log, set.JobRuns, NewJobNotifier(bus, log))
	return &fixture{
		db:       db,
		repos:    set,
		bus:      bus,
		jobs:     jobs,
		estimate: NewEstimationService(log, set.Records, store, nil, cfg, bus, metrics),
		outcomes: NewOutcomeService(log, aggregates.NewGormTxRunner(db), set.Episodes, set.Outcomes, jobs),
		results:  NewResultsService(log, set.Effects, set.PathSummaries, set.PartnerSummaries),
	}
}

// seedEffectUser writes n completed episodes where journaling intensity
// cycles 0/5/8 and crying falls as it rises. A third of the episodes are
// with a manager, the rest have no partner role.
func seedEffectUser(t *testing.T, f *fixture, user uuid.UUID, n int) {
	t.Helper()
	levels := []int{0, 5, 8}
	crying := map[int]int{0: 8, 5: 4, 8: 2}
	for i := 0; i < n; i++ {
		v := levels[i%len(levels)]
		fx := testutil.EpisodeFixture{
			UserID:       user,
			PreAnxiety:   i % 7,
			EvalThreat:   pointers.Int(i % 5),
			Suppress:     pointers.Int(i % 3),
			CryingLevel:  crying[v] + i%2,
			StressAfter:  7 - v/2,
			WithOutcome:  true,
			Preparations: map[string]int{"journaling_10m": v},
		}
		if i%3 == 0 {
			fx.PartnerRole = pointers.String("上司")
		}
		testutil.SeedEpisode(t, context.Background(), f.db, fx)
	}
}

func seedPlanned(t *testing.T, f *fixture, user uuid.UUID) *types.Episode {
	t.Helper()
	return testutil.SeedEpisode(t, context.Background(), f.db, testutil.EpisodeFixture{
		UserID:       user,
		Status:       types.EpisodePlanned,
		EvalThreat:   pointers.Int(3),
		Suppress:     pointers.Int(3),
		Preparations: map[string]int{"journaling_10m": 5},
	})
}

func testLogger(t *testing.T) *logger.Logger { return testutil.Logger(t) }

func runnerFor(f *fixture) aggregates.TxRunner { return aggregates.NewGormTxRunner(f.db) }
