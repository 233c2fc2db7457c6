package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/scoring"
	"github.com/spf13/cobra"
)

// NewScoreCmd scores an answer set file against an exam file without any backing store.
func NewScoreCmd() *cobra.Command {
	var (
		examPath    string
		answersPath string
		breakdown   bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers JSON file against an exam JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), examPath, answersPath, breakdown)
		},
	}
	cmd.Flags().StringVar(&examPath, "exam", "", "path to exam JSON")
	cmd.Flags().StringVar(&answersPath, "answers", "", "path to answers JSON (questionId -> answer)")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "include per-question outcomes")
	_ = cmd.MarkFlagRequired("exam")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func runScore(out io.Writer, examPath, answersPath string, breakdown bool) error {
	var exam domain.Exam
	if err := readJSON(examPath, &exam); err != nil {
		return err
	}
	answers := domain.AnswerSet{}
	if err := readJSON(answersPath, &answers); err != nil {
		return err
	}

	outcomes, err := scoring.Breakdown(&exam, answers)
	if err != nil {
		return err
	}
	report := struct {
		domain.ScoreResult
		Questions []scoring.Outcome `json:"questions,omitempty"`
	}{ScoreResult: scoring.Total(outcomes)}
	if breakdown {
		report.Questions = outcomes
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
