package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is a learner's submission for one question: a single token, a list of tokens, or nothing.
// The zero value is an unanswered (null) answer.
type Answer struct {
	Values []string
	List   bool
}

// AnswerSet maps question ids to submitted answers.
type AnswerSet map[string]Answer

// SingleAnswer builds an answer submitted as a plain string.
func SingleAnswer(v string) Answer {
	return Answer{Values: []string{v}}
}

// ListAnswer builds an answer submitted as an array of strings.
func ListAnswer(v ...string) Answer {
	if v == nil {
		v = []string{}
	}
	return Answer{Values: v, List: true}
}

// Unanswered reports null, blank strings and empty arrays.
func (a Answer) Unanswered() bool {
	if len(a.Values) == 0 {
		return true
	}
	if a.List {
		return false
	}
	return strings.TrimSpace(a.Values[0]) == ""
}

// Token is the single value examined for scoring: the first element of a list, or the string itself.
func (a Answer) Token() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.List:
		values := a.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	case len(a.Values) == 0:
		return []byte("null"), nil
	default:
		return json.Marshal(a.Values[0])
	}
}

// UnmarshalJSON accepts a string, an array of strings or null. Scalar numbers and
// booleans are kept as their literal text.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*a = Answer{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*a = SingleAnswer(v)
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			s, err := answerText(item)
			if err != nil {
				return err
			}
			values = append(values, s)
		}
		*a = ListAnswer(values...)
	default:
		s, err := answerText(v)
		if err != nil {
			return err
		}
		*a = SingleAnswer(s)
	}
	return nil
}

func answerText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool, float64:
		return fmt.Sprint(t), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported answer value %T", v)
	}
}
