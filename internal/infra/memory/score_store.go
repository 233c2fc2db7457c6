package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"exam-scoring-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreRepository.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]map[string]domain.ScoreRecord // examID -> studentID -> record
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		scores: make(map[string]map[string]domain.ScoreRecord),
	}
}

func (s *ScoreStore) UpsertScore(_ context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStudent, ok := s.scores[record.ExamID]
	if !ok {
		byStudent = make(map[string]domain.ScoreRecord)
		s.scores[record.ExamID] = byStudent
	}
	if prev, ok := byStudent[record.StudentID]; ok {
		record = prev.Merge(record)
	}
	byStudent[record.StudentID] = record
	return record, nil
}

// ListScoresByExam returns records ordered by student id.
func (s *ScoreStore) ListScoresByExam(_ context.Context, examID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ScoreRecord, 0, len(s.scores[examID]))
	for _, rec := range s.scores[examID] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

func (s *ScoreStore) UpdateScores(_ context.Context, records []domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		prev, ok := s.scores[rec.ExamID][rec.StudentID]
		if !ok {
			return fmt.Errorf("update score %s: record not found", rec.ID)
		}
		prev.AchievedScore = rec.AchievedScore
		prev.MaxPossibleScore = rec.MaxPossibleScore
		prev.UpdatedAt = rec.UpdatedAt
		s.scores[rec.ExamID][rec.StudentID] = prev
	}
	return nil
}

// GetScore returns the record for one student, if any.
func (s *ScoreStore) GetScore(_ context.Context, examID, studentID string) (domain.ScoreRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.scores[examID][studentID]
	return rec, ok
}
