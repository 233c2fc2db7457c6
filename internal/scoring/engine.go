// Package scoring computes achieved and maximum scores of an answer set against an exam.
// Every function here is pure: no I/O, no mutation of its inputs.
package scoring

import (
	"fmt"
	"strings"

	"exam-scoring-service/internal/domain"
)

// Outcome is the evaluation of a single question.
type Outcome struct {
	QuestionID string              `json:"questionId"`
	BlockID    string              `json:"blockId"`
	Type       domain.QuestionType `json:"type"`
	Points     float64             `json:"points"`
	Answered   bool                `json:"answered"`
	Correct    bool                `json:"correct"`
	Awarded    float64             `json:"awarded"`
}

// Score walks the exam in document order and sums the points of correctly answered questions.
// A nil exam or nil answer set is a caller error; defects inside a question only make it incorrect.
func Score(exam *domain.Exam, answers domain.AnswerSet) (domain.ScoreResult, error) {
	outcomes, err := Breakdown(exam, answers)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return Total(outcomes), nil
}

// Breakdown evaluates every question and returns one outcome per question in document order.
func Breakdown(exam *domain.Exam, answers domain.AnswerSet) ([]Outcome, error) {
	if exam == nil {
		return nil, fmt.Errorf("score: nil exam: %w", domain.ErrInvalidArgument)
	}
	if answers == nil {
		return nil, fmt.Errorf("score: nil answers: %w", domain.ErrInvalidArgument)
	}

	outcomes := make([]Outcome, 0)
	for bi := range exam.Blocks {
		block := &exam.Blocks[bi]
		for _, q := range block.Questions {
			if q == nil {
				continue
			}
			base := q.Base()
			out := Outcome{
				QuestionID: base.ID,
				BlockID:    block.ID,
				Type:       q.Type(),
				Points:     base.Points,
			}
			answer, ok := answers[base.ID]
			if ok && !answer.Unanswered() {
				out.Answered = true
				out.Correct = isCorrect(block, q, answer.Token())
			}
			if out.Correct {
				out.Awarded = base.Points
			}
			outcomes = append(outcomes, out)
		}
	}
	return outcomes, nil
}

// Total aggregates outcomes into a score result.
func Total(outcomes []Outcome) domain.ScoreResult {
	var res domain.ScoreResult
	for _, out := range outcomes {
		res.MaxPossibleScore += out.Points
		res.AchievedScore += out.Awarded
	}
	return res
}

func isCorrect(block *domain.Block, q domain.Question, token string) bool {
	switch v := q.(type) {
	case domain.MultipleChoiceQuestion:
		return multipleChoiceCorrect(v, token)
	case domain.TrueFalseQuestion:
		return trueFalseCorrect(v, token)
	case domain.MatchingQuestion:
		return matchingCorrect(v, token)
	case domain.PooledChoicesQuestion:
		return pooledChoicesCorrect(block.ChoicePool, v, token)
	default:
		return false
	}
}

// multipleChoiceCorrect compares against the first option flagged correct.
func multipleChoiceCorrect(q domain.MultipleChoiceQuestion, token string) bool {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return token == opt.ID
		}
	}
	return false
}

func trueFalseCorrect(q domain.TrueFalseQuestion, token string) bool {
	if q.CorrectAnswer == nil {
		return false
	}
	if *q.CorrectAnswer {
		return token == "true"
	}
	return token == "false"
}

// matchingCorrect only checks the first pair's letter.
// TODO: score every pair once the client submits one answer per premise; changing it rewrites historical scores.
func matchingCorrect(q domain.MatchingQuestion, token string) bool {
	if len(q.Pairs) == 0 {
		return false
	}
	return strings.ToUpper(token) == strings.ToUpper(q.Pairs[0].ResponseLetter)
}

func pooledChoicesCorrect(pool []domain.PoolOption, q domain.PooledChoicesQuestion, token string) bool {
	if len(pool) == 0 || len(q.CorrectAnswersFromPool) == 0 {
		return false
	}
	target := q.CorrectAnswersFromPool[0]
	letter := strings.ToUpper(token)
	for i, opt := range pool {
		if PoolLetter(i) == letter {
			return opt.Text == target
		}
	}
	return false
}

// PoolLetter labels a choice pool position: 0 is "A", 1 is "B" and so on.
func PoolLetter(index int) string {
	return string(rune('A' + index))
}
