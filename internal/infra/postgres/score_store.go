package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"exam-scoring-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore persists score records in the scores table, unique per (exam_id, student_id).
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

const scoreColumns = `id, exam_id, student_id, class_id, subject_id, answers, achieved_score, max_possible_score, submitted_at, updated_at`

func (s *ScoreStore) UpsertScore(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error) {
	answers, err := encodeAnswers(record.Answers)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO scores (`+scoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
		ON CONFLICT (exam_id, student_id) DO UPDATE SET
			class_id = EXCLUDED.class_id,
			subject_id = EXCLUDED.subject_id,
			answers = EXCLUDED.answers,
			achieved_score = EXCLUDED.achieved_score,
			max_possible_score = EXCLUDED.max_possible_score,
			updated_at = EXCLUDED.updated_at
		RETURNING `+scoreColumns,
		record.ID, record.ExamID, record.StudentID, record.ClassID, record.SubjectID, answers,
		record.AchievedScore, record.MaxPossibleScore, record.SubmittedAt, record.UpdatedAt)
	saved, err := scanScore(row)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("upsert score: %w", err)
	}
	return saved, nil
}

func (s *ScoreStore) ListScoresByExam(ctx context.Context, examID string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+scoreColumns+` FROM scores WHERE exam_id=$1 ORDER BY student_id`, examID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateScores sends all updates in one batch inside a transaction.
func (s *ScoreStore) UpdateScores(ctx context.Context, records []domain.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(`UPDATE scores SET achieved_score=$1, max_possible_score=$2, updated_at=$3 WHERE id=$4`,
				rec.AchievedScore, rec.MaxPossibleScore, rec.UpdatedAt, rec.ID)
		}
		br := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("update score: %w", err)
			}
		}
		return br.Close()
	})
}

func scanScore(row pgx.Row) (domain.ScoreRecord, error) {
	var (
		rec     domain.ScoreRecord
		answers []byte
	)
	err := row.Scan(&rec.ID, &rec.ExamID, &rec.StudentID, &rec.ClassID, &rec.SubjectID, &answers,
		&rec.AchievedScore, &rec.MaxPossibleScore, &rec.SubmittedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return domain.ScoreRecord{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	return rec, nil
}

// encodeAnswers returns nil for a missing answer set so the column stays NULL.
func encodeAnswers(answers domain.AnswerSet) (*string, error) {
	if answers == nil {
		return nil, nil
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	s := string(data)
	return &s, nil
}
