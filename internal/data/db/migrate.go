package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/domain/jobs"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Journal records
		// =========================
		&emotion.Episode{},
		&emotion.PreparationExecution{},
		&emotion.Outcome{},
		&emotion.TraitProfile{},

		// =========================
		// Estimation aggregates
		// =========================
		&emotion.TreatmentEffect{},
		&emotion.PathSummary{},
		&emotion.PathPartnerSummary{},

		// =========================
		// Job queue
		// =========================
		&jobs.JobRun{},
	)
}
