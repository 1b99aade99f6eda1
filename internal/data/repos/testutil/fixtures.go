package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

// EpisodeFixture describes one seeded episode. Zero values get neutral defaults.
type EpisodeFixture struct {
	UserID       uuid.UUID
	ScheduledAt  time.Time
	Status       types.EpisodeStatus
	PreAnxiety   int
	EvalThreat   *int
	Suppress     *int
	PartnerRole  *string
	Topic        string
	Location     string
	CryingLevel  int
	StressAfter  int
	WithOutcome  bool
	Preparations map[string]int
}

func SeedEpisode(tb testing.TB, ctx context.Context, tx *gorm.DB, fx EpisodeFixture) *types.Episode {
	tb.Helper()
	now := time.Now().UTC()
	if fx.ScheduledAt.IsZero() {
		fx.ScheduledAt = now
	}
	if fx.Status == "" {
		fx.Status = types.EpisodeCompleted
	}
	if fx.Topic == "" {
		fx.Topic = "転職理由"
	}
	if fx.Location == "" {
		fx.Location = "online"
	}
	ep := &types.Episode{
		ID:                  uuid.New(),
		UserID:              fx.UserID,
		ScenarioType:        types.ScenarioInterview,
		Topic:               fx.Topic,
		ScheduledAt:         fx.ScheduledAt,
		Location:            fx.Location,
		Status:              fx.Status,
		PreAnxiety:          fx.PreAnxiety,
		PreCryingRisk:       5,
		PreSpeechBlockRisk:  5,
		EvalThreatLevel:     fx.EvalThreat,
		SuppressIntentLevel: fx.Suppress,
		ContextPartnerRole:  fx.PartnerRole,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(ep).Error; err != nil {
		tb.Fatalf("seed episode: %v", err)
	}
	for key, v := range fx.Preparations {
		SeedPreparation(tb, ctx, tx, ep.ID, key, nil, pointers.Int(v), now)
	}
	if fx.WithOutcome {
		o := &types.Outcome{
			EpisodeID:       ep.ID,
			StressDuring:    fx.StressAfter,
			StressAfter:     fx.StressAfter,
			CryingLevel:     fx.CryingLevel,
			ExpressionScore: 5,
			CreatedAt:       now,
		}
		if err := tx.WithContext(ctx).Create(o).Error; err != nil {
			tb.Fatalf("seed outcome: %v", err)
		}
	}
	return ep
}

func SeedPreparation(tb testing.TB, ctx context.Context, tx *gorm.DB, episodeID uuid.UUID, key string, planned, actual *int, createdAt time.Time) *types.PreparationExecution {
	tb.Helper()
	p := &types.PreparationExecution{
		ID:               uuid.New(),
		EpisodeID:        episodeID,
		TemplateKey:      key,
		PlannedIntensity: planned,
		ActualIntensity:  actual,
		CreatedAt:        createdAt,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed preparation: %v", err)
	}
	return p
}

func SeedTraitProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, social, crying int) *types.TraitProfile {
	tb.Helper()
	tp := &types.TraitProfile{
		UserID:               userID,
		TraitSocialAnxiety:   social,
		TraitCryingProneness: crying,
		TraitSuppression:     5,
		UpdatedAt:            time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(tp).Error; err != nil {
		tb.Fatalf("seed trait profile: %v", err)
	}
	return tp
}
