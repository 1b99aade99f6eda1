package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/cqox-backend/internal/app"
	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/sample"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
	"github.com/yungbote/cqox-backend/internal/platform/shutdown"
	"github.com/yungbote/cqox-backend/internal/services"
)

var (
	seedFlag uint64
	onlyUser string

	genEpisodes int
	genUsers    int
	genSeed     uint64
	genToday    string
)

var rootCmd = &cobra.Command{
	Use:           "cqox-estimate",
	Short:         "Estimate treatment effects and path summaries for every user",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEstimate,
}

var seedCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Generate a synthetic episode history and write it to the database",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSeed,
}

func init() {
	rootCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "random seed for forests and bootstrap (0 keeps ESTIMATOR_SEED)")
	rootCmd.Flags().StringVar(&onlyUser, "only", "", "estimate a single user id")

	def := sample.DefaultConfig()
	seedCmd.Flags().IntVar(&genEpisodes, "episodes", def.Episodes, "number of episodes to generate")
	seedCmd.Flags().IntVar(&genUsers, "users", def.Users, "number of users")
	seedCmd.Flags().Uint64Var(&genSeed, "seed", def.Seed, "generator seed")
	seedCmd.Flags().StringVar(&genToday, "today", def.Today.Format(time.DateOnly), "reference date; history ends the day before")

	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cqox-estimate: %v\n", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := app.LoadConfig(log)
	if err != nil {
		return nil, err
	}
	if seedFlag != 0 {
		cfg.Estimator.Seed = seedFlag
	}
	return app.New(ctx, log, cfg)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	var only uuid.UUID
	if onlyUser != "" {
		id, err := uuid.Parse(onlyUser)
		if err != nil {
			return fmt.Errorf("--only: %w", err)
		}
		only = id
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var summaries []services.UserRunSummary
	if only != uuid.Nil {
		s, err := a.Services.Estimation.RunForUser(ctx, only)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	} else {
		summaries, err = a.Services.Estimation.Run(ctx)
	}
	for _, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s episodes=%d effects=%d skipped=%d path=%t partners=%d\n",
			s.UserID, s.Episodes, s.Effects, s.Skipped, s.Path, s.Partners)
	}
	return err
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	cfg := sample.DefaultConfig()
	cfg.Episodes = genEpisodes
	cfg.Users = genUsers
	cfg.Seed = genSeed
	today, err := time.Parse(time.DateOnly, genToday)
	if err != nil {
		return fmt.Errorf("--today: %w", err)
	}
	cfg.Today = today

	data, err := sample.Generate(cfg)
	if err != nil {
		return err
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := sample.Write(ctx, aggregates.NewGormTxRunner(a.DB), a.Repos, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded users=%d episodes=%d preparations=%d outcomes=%d traits=%d\n",
		len(data.Users), len(data.Episodes), len(data.Preparations), len(data.Outcomes), len(data.Traits))
	return nil
}
