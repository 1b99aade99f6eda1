package sample

import (
	"context"
	"fmt"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
)

// batchSize keeps multi-row inserts under SQLite's bound-parameter limit.
const batchSize = 200

func chunks[T any](rows []T, size int, fn func([]T) error) error {
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Write inserts data in a single transaction.
func Write(ctx context.Context, runner aggregates.TxRunner, set repos.Set, data *Data) error {
	if data == nil {
		return nil
	}
	return runner.InTx(ctx, func(dbc dbctx.Context) error {
		for _, tp := range data.Traits {
			if err := set.Traits.Upsert(dbc, tp); err != nil {
				return fmt.Errorf("upsert trait profile: %w", err)
			}
		}
		if err := chunks(data.Episodes, batchSize, func(rows []*types.Episode) error {
			_, err := set.Episodes.Create(dbc, rows)
			return err
		}); err != nil {
			return fmt.Errorf("insert episodes: %w", err)
		}
		if err := chunks(data.Preparations, batchSize, func(rows []*types.PreparationExecution) error {
			_, err := set.Preparations.Create(dbc, rows)
			return err
		}); err != nil {
			return fmt.Errorf("insert preparations: %w", err)
		}
		for _, o := range data.Outcomes {
			if err := set.Outcomes.Create(dbc, o); err != nil {
				return fmt.Errorf("insert outcome: %w", err)
			}
		}
		return nil
	})
}
