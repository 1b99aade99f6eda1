package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cqox-backend/internal/pkg/errors"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

// ResultsService reads persisted estimates for the dashboard.
type ResultsService interface {
	TreatmentEffects(ctx context.Context, userID uuid.UUID) ([]*types.TreatmentEffect, error)
	// PathSummary returns ErrNotFound until the user's path model has been
	// estimated once.
	PathSummary(ctx context.Context, userID uuid.UUID) (*types.PathSummary, error)
	PartnerSummaries(ctx context.Context, userID uuid.UUID) ([]*types.PathPartnerSummary, error)
}

type resultsService struct {
	log      *logger.Logger
	effects  repos.TreatmentEffectRepo
	paths    repos.PathSummaryRepo
	partners repos.PathPartnerSummaryRepo
}

func NewResultsService(baseLog *logger.Logger, effects repos.TreatmentEffectRepo, paths repos.PathSummaryRepo, partners repos.PathPartnerSummaryRepo) ResultsService {
	return &resultsService{
		log:      baseLog.With("service", "ResultsService"),
		effects:  effects,
		paths:    paths,
		partners: partners,
	}
}

func (s *resultsService) TreatmentEffects(ctx context.Context, userID uuid.UUID) ([]*types.TreatmentEffect, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", pkgerrors.ErrInvalidArgument)
	}
	rows, err := s.effects.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list treatment effects: %w", err)
	}
	if rows == nil {
		rows = []*types.TreatmentEffect{}
	}
	return rows, nil
}

func (s *resultsService) PathSummary(ctx context.Context, userID uuid.UUID) (*types.PathSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", pkgerrors.ErrInvalidArgument)
	}
	row, err := s.paths.GetByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("get path summary: %w", err)
	}
	if row == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return row, nil
}

func (s *resultsService) PartnerSummaries(ctx context.Context, userID uuid.UUID) ([]*types.PathPartnerSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", pkgerrors.ErrInvalidArgument)
	}
	rows, err := s.partners.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list partner summaries: %w", err)
	}
	if rows == nil {
		rows = []*types.PathPartnerSummary{}
	}
	return rows, nil
}
