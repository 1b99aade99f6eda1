package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/data/repos/emotion"
	"github.com/yungbote/cqox-backend/internal/data/repos/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type EpisodeRepo = emotion.EpisodeRepo
type PreparationRepo = emotion.PreparationRepo
type OutcomeRepo = emotion.OutcomeRepo
type TraitProfileRepo = emotion.TraitProfileRepo
type EpisodeRecordRepo = emotion.EpisodeRecordRepo
type EpisodeFilter = emotion.EpisodeFilter

type TreatmentEffectRepo = emotion.TreatmentEffectRepo
type PathSummaryRepo = emotion.PathSummaryRepo
type PathPartnerSummaryRepo = emotion.PathPartnerSummaryRepo

type JobRunRepo = jobs.JobRunRepo

// Set is every repo the application wires, built over one database handle.
type Set struct {
	Episodes         EpisodeRepo
	Preparations     PreparationRepo
	Outcomes         OutcomeRepo
	Traits           TraitProfileRepo
	Records          EpisodeRecordRepo
	Effects          TreatmentEffectRepo
	PathSummaries    PathSummaryRepo
	PartnerSummaries PathPartnerSummaryRepo
	JobRuns          JobRunRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Episodes:         emotion.NewEpisodeRepo(db, baseLog),
		Preparations:     emotion.NewPreparationRepo(db, baseLog),
		Outcomes:         emotion.NewOutcomeRepo(db, baseLog),
		Traits:           emotion.NewTraitProfileRepo(db, baseLog),
		Records:          emotion.NewEpisodeRecordRepo(db, baseLog),
		Effects:          emotion.NewTreatmentEffectRepo(db, baseLog),
		PathSummaries:    emotion.NewPathSummaryRepo(db, baseLog),
		PartnerSummaries: emotion.NewPathPartnerSummaryRepo(db, baseLog),
		JobRuns:          jobs.NewJobRunRepo(db, baseLog),
	}
}
