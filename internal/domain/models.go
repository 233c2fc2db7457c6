package domain

import (
	"strings"
	"time"
)

// ExamStatus governs whether an exam accepts submissions.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
	ExamStatusArchived  ExamStatus = "archived"
)

// IsPublished reports whether the status is published, ignoring case.
func (s ExamStatus) IsPublished() bool {
	return strings.EqualFold(string(s), string(ExamStatusPublished))
}

// Exam is the graded artifact: an ordered list of blocks.
type Exam struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TotalPoints float64    `json:"totalPoints"` // authored total, informational only
	Status      ExamStatus `json:"status"`
	Blocks      []Block    `json:"blocks"`
}

// ComputedTotalPoints sums the points of every question in every block.
func (e Exam) ComputedTotalPoints() float64 {
	total := 0.0
	for _, block := range e.Blocks {
		for _, q := range block.Questions {
			total += q.Base().Points
		}
	}
	return total
}

// PoolOption is one entry of a pooled-choices block's shared choice pool.
type PoolOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Block groups questions of a single type.
type Block struct {
	ID           string       `json:"id"`
	BlockType    QuestionType `json:"blockType"`
	Title        string       `json:"title,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	Questions    []Question   `json:"questions"`
	ChoicePool   []PoolOption `json:"choicePool,omitempty"`
}

// ScoreResult is the achieved and maximum score of one answer set against one exam.
type ScoreResult struct {
	AchievedScore    float64 `json:"achievedScore"`
	MaxPossibleScore float64 `json:"maxPossibleScore"`
}

// ScoreRecord is the persisted result of one student's submission for one exam.
// Answers is nil when the record predates answer storage; such records cannot be recalculated.
type ScoreRecord struct {
	ID               string    `json:"id"`
	ExamID           string    `json:"examId"`
	StudentID        string    `json:"studentId"`
	ClassID          string    `json:"classId"`
	SubjectID        string    `json:"subjectId"`
	Answers          AnswerSet `json:"answers"`
	AchievedScore    float64   `json:"achievedScore"`
	MaxPossibleScore float64   `json:"maxPossibleScore"`
	SubmittedAt      time.Time `json:"submittedAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Merge applies a fresh submission on top of an existing record, keeping its identity.
func (r ScoreRecord) Merge(next ScoreRecord) ScoreRecord {
	next.ID = r.ID
	if !r.SubmittedAt.IsZero() {
		next.SubmittedAt = r.SubmittedAt
	}
	return next
}
