package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType is the discriminant shared by blocks and questions.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeMatching       QuestionType = "matching"
	TypePooledChoices  QuestionType = "pooled-choices"
)

// Question is a closed set of question variants. Only types in this package implement it.
type Question interface {
	Base() QuestionBase
	Type() QuestionType
	isQuestion()
}

// QuestionBase carries the fields every question variant has.
type QuestionBase struct {
	ID           string  `json:"id"`
	QuestionText string  `json:"questionText"`
	Points       float64 `json:"points"`
}

func (b QuestionBase) Base() QuestionBase { return b }

// Option is an answer choice of a multiple-choice question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type MultipleChoiceQuestion struct {
	QuestionBase
	Options []Option `json:"options"`
}

// TrueFalseQuestion has a nil CorrectAnswer when no answer key is set.
type TrueFalseQuestion struct {
	QuestionBase
	CorrectAnswer *bool `json:"correctAnswer"`
}

// MatchingPair links a premise to a response, labelled by ResponseLetter.
type MatchingPair struct {
	ID             string `json:"id"`
	Premise        string `json:"premise"`
	Response       string `json:"response"`
	ResponseLetter string `json:"responseLetter,omitempty"`
}

type MatchingQuestion struct {
	QuestionBase
	Pairs []MatchingPair `json:"pairs"`
}

// PooledChoicesQuestion references options of its block's choice pool by text.
type PooledChoicesQuestion struct {
	QuestionBase
	CorrectAnswersFromPool []string `json:"correctAnswersFromPool"`
}

// UnsupportedQuestion keeps questions with an unknown type or an undecodable body.
// They count towards the maximum score but can never be answered correctly.
type UnsupportedQuestion struct {
	QuestionBase
	RawType QuestionType `json:"type"`
	Reason  string       `json:"-"`
}

func (MultipleChoiceQuestion) Type() QuestionType { return TypeMultipleChoice }
func (TrueFalseQuestion) Type() QuestionType      { return TypeTrueFalse }
func (MatchingQuestion) Type() QuestionType       { return TypeMatching }
func (PooledChoicesQuestion) Type() QuestionType  { return TypePooledChoices }
func (q UnsupportedQuestion) Type() QuestionType  { return q.RawType }

func (MultipleChoiceQuestion) isQuestion() {}
func (TrueFalseQuestion) isQuestion()      {}
func (MatchingQuestion) isQuestion()       {}
func (PooledChoicesQuestion) isQuestion()  {}
func (UnsupportedQuestion) isQuestion()    {}

func (q MultipleChoiceQuestion) MarshalJSON() ([]byte, error) {
	type alias MultipleChoiceQuestion
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q TrueFalseQuestion) MarshalJSON() ([]byte, error) {
	type alias TrueFalseQuestion
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q MatchingQuestion) MarshalJSON() ([]byte, error) {
	type alias MatchingQuestion
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q PooledChoicesQuestion) MarshalJSON() ([]byte, error) {
	type alias PooledChoicesQuestion
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

// UnmarshalJSON decodes questions by their "type" tag, falling back to the block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var wire struct {
		alias
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*b = Block(wire.alias)
	b.Questions = make([]Question, 0, len(wire.Questions))
	for i, raw := range wire.Questions {
		q, err := decodeQuestion(raw, b.BlockType)
		if err != nil {
			return fmt.Errorf("block %q question %d: %w", b.ID, i, err)
		}
		b.Questions = append(b.Questions, q)
	}
	return nil
}

func decodeQuestion(raw json.RawMessage, fallback QuestionType) (Question, error) {
	base, typ, headErr := decodeHead(raw)
	if typ == "" {
		typ = fallback
	}
	if headErr != nil {
		return UnsupportedQuestion{QuestionBase: base, RawType: typ, Reason: headErr.Error()}, nil
	}

	var (
		q   Question
		err error
	)
	switch typ {
	case TypeMultipleChoice:
		var v MultipleChoiceQuestion
		err = json.Unmarshal(raw, &v)
		q = v
	case TypeTrueFalse:
		var v TrueFalseQuestion
		err = json.Unmarshal(raw, &v)
		q = v
	case TypeMatching:
		var v MatchingQuestion
		err = json.Unmarshal(raw, &v)
		q = v
	case TypePooledChoices:
		var v PooledChoicesQuestion
		err = json.Unmarshal(raw, &v)
		q = v
	default:
		return UnsupportedQuestion{QuestionBase: base, RawType: typ, Reason: "unknown question type"}, nil
	}
	if err != nil {
		return UnsupportedQuestion{QuestionBase: base, RawType: typ, Reason: err.Error()}, nil
	}
	return q, nil
}

// decodeHead reads the shared fields field by field, keeping whatever is usable.
// Numeric ids keep their literal text and numeric strings are accepted as points.
func decodeHead(raw json.RawMessage) (QuestionBase, QuestionType, error) {
	var (
		base   QuestionBase
		fields map[string]json.RawMessage
	)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return base, "", fmt.Errorf("question is not an object: %w", err)
	}

	var errs []error
	var typ string
	if err := decodeText(fields["type"], &typ); err != nil {
		errs = append(errs, fmt.Errorf("type: %w", err))
	}
	if err := decodeText(fields["id"], &base.ID); err != nil {
		errs = append(errs, fmt.Errorf("id: %w", err))
	}
	if err := decodeText(fields["questionText"], &base.QuestionText); err != nil {
		errs = append(errs, fmt.Errorf("questionText: %w", err))
	}
	if err := decodePoints(fields["points"], &base.Points); err != nil {
		errs = append(errs, fmt.Errorf("points: %w", err))
	}
	return base, QuestionType(typ), errors.Join(errs...)
}

func decodeText(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err == nil {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("expected string, got %s", raw)
	}
	*dst = n.String()
	return fmt.Errorf("expected string, got number %s", raw)
}

func decodePoints(raw json.RawMessage, dst *float64) error {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err == nil {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(text), 64); perr == nil {
			*dst = v
		}
	}
	return fmt.Errorf("expected number, got %s", raw)
}

// isJSONNull reports whether raw is the JSON literal null.
func isJSONNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
