package cli

import (
	"context"
	"log"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/config"
	"github.com/spf13/cobra"
)

// NewRecalculateCmd rescores every stored submission of an exam.
func NewRecalculateCmd(configPath *string) *cobra.Command {
	var examID string
	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recalculate stored scores after an exam changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalculate(cmd.Context(), *configPath, examID)
		},
	}
	cmd.Flags().StringVar(&examID, "exam-id", "", "exam to recalculate")
	_ = cmd.MarkFlagRequired("exam-id")
	return cmd
}

func runRecalculate(ctx context.Context, configPath, examID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := service.Recalculate(ctx, examID, func(p app.RecalcProgress) {
		if !p.Finished {
			log.Printf("recalculated %d/%d", p.Updated, p.Total-p.Skipped)
		}
	})
	if err != nil {
		log.Printf("recalculation stopped after %d records", res.RecalculatedCount)
		return err
	}
	log.Printf("recalculatedCount=%d skipped=%d", res.RecalculatedCount, res.SkippedCount)
	return nil
}
