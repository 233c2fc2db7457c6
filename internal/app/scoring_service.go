package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/scoring"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExamRepository loads fully resolved exams (from cache/backing store).
type ExamRepository interface {
	GetExam(ctx context.Context, examID string) (domain.Exam, error)
}

// ExamInvalidator is implemented by caching repositories that must drop an exam after it changes.
type ExamInvalidator interface {
	Invalidate(ctx context.Context, examID string) error
}

// ScoreRepository persists score records keyed by (exam, student).
type ScoreRepository interface {
	// UpsertScore inserts the record or merges it into the existing one for the same exam and student.
	UpsertScore(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error)
	ListScoresByExam(ctx context.Context, examID string) ([]domain.ScoreRecord, error)
	// UpdateScores overwrites achieved/max scores of existing records.
	UpdateScores(ctx context.Context, records []domain.ScoreRecord) error
}

// SubmitRequest is one learner's submission.
type SubmitRequest struct {
	ExamID    string           `json:"examId" validate:"required"`
	StudentID string           `json:"studentId" validate:"required"`
	ClassID   string           `json:"classId" validate:"required"`
	SubjectID string           `json:"subjectId" validate:"required"`
	Answers   domain.AnswerSet `json:"answers" validate:"required"`
}

// RecalcProgress is reported after each persisted batch.
type RecalcProgress struct {
	ExamID   string `json:"examId"`
	Total    int    `json:"total"`
	Skipped  int    `json:"skipped"`
	Updated  int    `json:"updated"`
	Finished bool   `json:"finished"`
}

// RecalcResult summarizes a recalculation run.
type RecalcResult struct {
	RecalculatedCount int `json:"recalculatedCount"`
	SkippedCount      int `json:"skippedCount"`
}

// Options tunes the scoring service.
type Options struct {
	RequirePublished  bool
	RecalcConcurrency int
	RecalcBatchSize   int
}

// ScoringService contains the submission and recalculation use cases.
type ScoringService struct {
	exams    ExamRepository
	scores   ScoreRepository
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

func NewScoringService(exams ExamRepository, scores ScoreRepository, opts Options) *ScoringService {
	if opts.RecalcConcurrency <= 0 {
		opts.RecalcConcurrency = 8
	}
	if opts.RecalcBatchSize <= 0 {
		opts.RecalcBatchSize = 100
	}
	return &ScoringService{
		exams:    exams,
		scores:   scores,
		opts:     opts,
		validate: validator.New(),
		now:      time.Now,
	}
}

// NewScoringServiceWithClock is test-only for deterministic timestamps.
func NewScoringServiceWithClock(exams ExamRepository, scores ScoreRepository, opts Options, now func() time.Time) *ScoringService {
	s := NewScoringService(exams, scores, opts)
	s.now = now
	return s
}

// Submit scores a submission and stores it as the student's record for the exam.
// A resubmission replaces the previous scores; the last write wins.
func (s *ScoringService) Submit(ctx context.Context, req SubmitRequest) (domain.ScoreResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	exam, err := s.exams.GetExam(ctx, req.ExamID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if s.opts.RequirePublished && !exam.Status.IsPublished() {
		return domain.ScoreResult{}, fmt.Errorf("exam %s is %s: %w", exam.ID, exam.Status, domain.ErrExamClosed)
	}

	result, err := scoring.Score(&exam, req.Answers)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	now := s.now()
	_, err = s.scores.UpsertScore(ctx, domain.ScoreRecord{
		ID:               uuid.NewString(),
		ExamID:           req.ExamID,
		StudentID:        req.StudentID,
		ClassID:          req.ClassID,
		SubjectID:        req.SubjectID,
		Answers:          req.Answers,
		AchievedScore:    result.AchievedScore,
		MaxPossibleScore: result.MaxPossibleScore,
		SubmittedAt:      now,
		UpdatedAt:        now,
	})
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("save score: %w", err)
	}
	return result, nil
}

// Recalculate rescores every stored submission of an exam against its current content.
// Records without stored answers are skipped. On failure the returned result holds the
// number of records already persisted; running it again is safe.
func (s *ScoringService) Recalculate(ctx context.Context, examID string, progress func(RecalcProgress)) (RecalcResult, error) {
	if examID == "" {
		return RecalcResult{}, fmt.Errorf("%w: examId is required", domain.ErrInvalidArgument)
	}
	if progress == nil {
		progress = func(RecalcProgress) {}
	}

	if inv, ok := s.exams.(ExamInvalidator); ok {
		if err := inv.Invalidate(ctx, examID); err != nil {
			log.Printf("invalidate exam %s: %v", examID, err)
		}
	}
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return RecalcResult{}, err
	}

	records, err := s.scores.ListScoresByExam(ctx, examID)
	if err != nil {
		return RecalcResult{}, fmt.Errorf("list scores: %w", err)
	}

	pending := make([]domain.ScoreRecord, 0, len(records))
	for _, rec := range records {
		if rec.Answers == nil {
			continue
		}
		pending = append(pending, rec)
	}
	result := RecalcResult{SkippedCount: len(records) - len(pending)}
	report := RecalcProgress{ExamID: examID, Total: len(records), Skipped: result.SkippedCount}

	if err := s.rescore(ctx, &exam, pending); err != nil {
		return result, err
	}

	for start := 0; start < len(pending); start += s.opts.RecalcBatchSize {
		end := min(start+s.opts.RecalcBatchSize, len(pending))
		if err := s.scores.UpdateScores(ctx, pending[start:end]); err != nil {
			return result, fmt.Errorf("update scores after %d of %d: %w", result.RecalculatedCount, len(pending), err)
		}
		result.RecalculatedCount += end - start
		report.Updated = result.RecalculatedCount
		progress(report)
	}

	report.Finished = true
	progress(report)
	log.Printf("recalculated %d scores for exam %s (%d skipped)", result.RecalculatedCount, examID, result.SkippedCount)
	return result, nil
}

// rescore updates records in place using a bounded number of goroutines.
func (s *ScoringService) rescore(ctx context.Context, exam *domain.Exam, records []domain.ScoreRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RecalcConcurrency)
	now := s.now()
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := scoring.Score(exam, rec.Answers)
			if err != nil {
				return fmt.Errorf("score record %s: %w", rec.ID, err)
			}
			rec.AchievedScore = res.AchievedScore
			rec.MaxPossibleScore = res.MaxPossibleScore
			rec.UpdatedAt = now
			return nil
		})
	}
	return g.Wait()
}

// IsClientError reports errors caused by the request rather than the service.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrExamNotFound) || errors.Is(err, domain.ErrExamClosed)
}
