package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"exam-scoring-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// ScoreStore keeps score records in one hash per exam, one field per student:
// HSET exam:{examID}:scores {studentID} {json}
// Concurrent submissions for the same student race; the last write wins.
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) UpsertScore(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error) {
	key := s.key(record.ExamID)
	prev, err := s.client.HGet(ctx, key, record.StudentID).Bytes()
	switch {
	case err == nil:
		var existing domain.ScoreRecord
		if err := json.Unmarshal(prev, &existing); err != nil {
			log.Printf("decode stored score %s/%s, replacing it: %v", record.ExamID, record.StudentID, err)
		} else {
			record = existing.Merge(record)
		}
	case !errors.Is(err, redis.Nil):
		return domain.ScoreRecord{}, err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if err := s.client.HSet(ctx, key, record.StudentID, data).Err(); err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

// ListScoresByExam returns records ordered by student id.
func (s *ScoreStore) ListScoresByExam(ctx context.Context, examID string) ([]domain.ScoreRecord, error) {
	raw, err := s.client.HGetAll(ctx, s.key(examID)).Result()
	if err != nil {
		return nil, err
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for studentID, data := range raw {
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode score %s/%s: %w", examID, studentID, err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

// UpdateScores overwrites only the score fields of the records currently stored.
// Each exam hash is updated under WATCH, so a resubmission landing mid-update is never
// reverted to the snapshot the caller read; the transaction retries on top of it instead.
// Records deleted since they were listed are skipped.
func (s *ScoreStore) UpdateScores(ctx context.Context, records []domain.ScoreRecord) error {
	byExam := make(map[string][]domain.ScoreRecord)
	for _, rec := range records {
		byExam[rec.ExamID] = append(byExam[rec.ExamID], rec)
	}
	for examID, recs := range byExam {
		if err := s.updateExamScores(ctx, s.key(examID), recs); err != nil {
			return fmt.Errorf("update scores of exam %s: %w", examID, err)
		}
	}
	return nil
}

func (s *ScoreStore) updateExamScores(ctx context.Context, key string, records []domain.ScoreRecord) error {
	fields := make([]string, len(records))
	for i, rec := range records {
		fields[i] = rec.StudentID
	}

	txf := func(tx *redis.Tx) error {
		current, err := tx.HMGet(ctx, key, fields...).Result()
		if err != nil {
			return err
		}
		values := make([]interface{}, 0, 2*len(records))
		for i, rec := range records {
			raw, ok := current[i].(string)
			if !ok {
				continue
			}
			var stored domain.ScoreRecord
			if err := json.Unmarshal([]byte(raw), &stored); err != nil {
				log.Printf("decode stored score %s/%s, skipping: %v", rec.ExamID, rec.StudentID, err)
				continue
			}
			stored.AchievedScore = rec.AchievedScore
			stored.MaxPossibleScore = rec.MaxPossibleScore
			stored.UpdatedAt = rec.UpdatedAt
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			values = append(values, rec.StudentID, data)
		}
		if len(values) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values...)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%s changed during %d attempts: %w", key, maxTxRetries, redis.TxFailedErr)
}

func (s *ScoreStore) key(examID string) string {
	return "exam:" + examID + ":scores"
}
