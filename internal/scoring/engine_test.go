package scoring_test

import (
	"errors"
	"testing"

	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/scoring"
)

func boolPtr(b bool) *bool { return &b }

func mcq(id string, points float64, options ...domain.Option) domain.MultipleChoiceQuestion {
	return domain.MultipleChoiceQuestion{
		QuestionBase: domain.QuestionBase{ID: id, QuestionText: "pick one", Points: points},
		Options:      options,
	}
}

func examWith(blocks ...domain.Block) *domain.Exam {
	return &domain.Exam{ID: "exam-1", Title: "Unit test", Status: domain.ExamStatusPublished, Blocks: blocks}
}

func mustScore(t *testing.T, exam *domain.Exam, answers domain.AnswerSet) domain.ScoreResult {
	t.Helper()
	res, err := scoring.Score(exam, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return res
}

func TestScoreRejectsNilInputs(t *testing.T) {
	if _, err := scoring.Score(nil, domain.AnswerSet{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil exam, got %v", err)
	}
	if _, err := scoring.Score(examWith(), nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil answers, got %v", err)
	}
}

func TestScoreEmptyExam(t *testing.T) {
	res := mustScore(t, examWith(), domain.AnswerSet{"q1": domain.SingleAnswer("o1")})
	if res != (domain.ScoreResult{}) {
		t.Fatalf("expected (0, 0), got %+v", res)
	}
}

func TestScoreNoAnswersCountsMaxOnly(t *testing.T) {
	exam := sampleExam()
	res := mustScore(t, exam, domain.AnswerSet{})
	if res.AchievedScore != 0 {
		t.Fatalf("expected 0 achieved, got %v", res.AchievedScore)
	}
	if res.MaxPossibleScore != exam.ComputedTotalPoints() {
		t.Fatalf("expected max %v, got %v", exam.ComputedTotalPoints(), res.MaxPossibleScore)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	exam := sampleExam()
	answers := domain.AnswerSet{
		"mc1": domain.SingleAnswer("o2"),
		"tf1": domain.SingleAnswer("true"),
		"m1":  domain.SingleAnswer("a"),
		"p1":  domain.ListAnswer("B", "A"),
	}
	first := mustScore(t, exam, answers)
	second := mustScore(t, exam, answers)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if first.AchievedScore != 6 || first.MaxPossibleScore != 6 {
		t.Fatalf("expected 6/6, got %+v", first)
	}
}

func TestMultipleChoice(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: domain.TypeMultipleChoice, Questions: []domain.Question{
		mcq("q1", 2,
			domain.Option{ID: "o1", Text: "A", IsCorrect: false},
			domain.Option{ID: "o2", Text: "B", IsCorrect: true},
		),
	}})

	cases := []struct {
		name    string
		answers domain.AnswerSet
		want    float64
	}{
		{"correct", domain.AnswerSet{"q1": domain.SingleAnswer("o2")}, 2},
		{"wrong", domain.AnswerSet{"q1": domain.SingleAnswer("o1")}, 0},
		{"absent", domain.AnswerSet{}, 0},
		{"null", domain.AnswerSet{"q1": {}}, 0},
		{"array first element", domain.AnswerSet{"q1": domain.ListAnswer("o2", "o1")}, 2},
		{"array second element ignored", domain.AnswerSet{"q1": domain.ListAnswer("o1", "o2")}, 0},
		{"empty array", domain.AnswerSet{"q1": domain.ListAnswer()}, 0},
		{"case sensitive id", domain.AnswerSet{"q1": domain.SingleAnswer("O2")}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustScore(t, exam, tc.answers)
			if res.AchievedScore != tc.want || res.MaxPossibleScore != 2 {
				t.Fatalf("expected %v/2, got %+v", tc.want, res)
			}
		})
	}
}

func TestMultipleChoiceFirstCorrectOptionWins(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: domain.TypeMultipleChoice, Questions: []domain.Question{
		mcq("q1", 1,
			domain.Option{ID: "o1", IsCorrect: true},
			domain.Option{ID: "o2", IsCorrect: true},
		),
		mcq("q2", 1, domain.Option{ID: "o1"}, domain.Option{ID: "o2"}),
		mcq("q3", 1),
	}})
	res := mustScore(t, exam, domain.AnswerSet{
		"q1": domain.SingleAnswer("o2"),
		"q2": domain.SingleAnswer("o1"),
		"q3": domain.SingleAnswer("o1"),
	})
	if res.AchievedScore != 0 || res.MaxPossibleScore != 3 {
		t.Fatalf("expected 0/3, got %+v", res)
	}
	res = mustScore(t, exam, domain.AnswerSet{"q1": domain.SingleAnswer("o1")})
	if res.AchievedScore != 1 {
		t.Fatalf("expected first correct option to score, got %+v", res)
	}
}

func TestTrueFalse(t *testing.T) {
	question := func(correct *bool) *domain.Exam {
		return examWith(domain.Block{ID: "b1", BlockType: domain.TypeTrueFalse, Questions: []domain.Question{
			domain.TrueFalseQuestion{QuestionBase: domain.QuestionBase{ID: "q1", Points: 1}, CorrectAnswer: correct},
		}})
	}

	cases := []struct {
		name    string
		correct *bool
		answer  string
		want    float64
	}{
		{"true key, true answer", boolPtr(true), "true", 1},
		{"true key, false answer", boolPtr(true), "false", 0},
		{"false key, false answer", boolPtr(false), "false", 1},
		{"false key, true answer", boolPtr(false), "true", 0},
		{"literal only", boolPtr(true), "True", 0},
		{"no key", nil, "true", 0},
		{"no key false", nil, "false", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustScore(t, question(tc.correct), domain.AnswerSet{"q1": domain.SingleAnswer(tc.answer)})
			if res.AchievedScore != tc.want || res.MaxPossibleScore != 1 {
				t.Fatalf("expected %v/1, got %+v", tc.want, res)
			}
		})
	}
}

func TestMatchingOnlyChecksFirstPair(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: domain.TypeMatching, Questions: []domain.Question{
		domain.MatchingQuestion{
			QuestionBase: domain.QuestionBase{ID: "q1", Points: 4},
			Pairs: []domain.MatchingPair{
				{ID: "p1", Premise: "P1", Response: "R1", ResponseLetter: "A"},
				{ID: "p2", Premise: "P2", Response: "R2", ResponseLetter: "B"},
			},
		},
	}})

	if res := mustScore(t, exam, domain.AnswerSet{"q1": domain.SingleAnswer("a")}); res.AchievedScore != 4 {
		t.Fatalf("expected lowercase first letter to score 4, got %+v", res)
	}
	if res := mustScore(t, exam, domain.AnswerSet{"q1": domain.SingleAnswer("B")}); res.AchievedScore != 0 {
		t.Fatalf("expected second pair's letter to score 0, got %+v", res)
	}
}

func TestMatchingWithoutPairs(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: domain.TypeMatching, Questions: []domain.Question{
		domain.MatchingQuestion{QuestionBase: domain.QuestionBase{ID: "q1", Points: 1}},
	}})
	res := mustScore(t, exam, domain.AnswerSet{"q1": domain.SingleAnswer("A")})
	if res.AchievedScore != 0 || res.MaxPossibleScore != 1 {
		t.Fatalf("expected 0/1, got %+v", res)
	}
}

func TestPooledChoices(t *testing.T) {
	build := func(pool []domain.PoolOption, correct []string) *domain.Exam {
		return examWith(domain.Block{
			ID:         "b1",
			BlockType:  domain.TypePooledChoices,
			ChoicePool: pool,
			Questions: []domain.Question{
				domain.PooledChoicesQuestion{
					QuestionBase:           domain.QuestionBase{ID: "q1", Points: 1.5},
					CorrectAnswersFromPool: correct,
				},
			},
		})
	}
	pool := []domain.PoolOption{{ID: "c1", Text: "Paris"}, {ID: "c2", Text: "London"}}

	cases := []struct {
		name    string
		pool    []domain.PoolOption
		correct []string
		answer  string
		want    float64
	}{
		{"matching letter", pool, []string{"London"}, "B", 1.5},
		{"lowercase letter", pool, []string{"London"}, "b", 1.5},
		{"wrong letter", pool, []string{"London"}, "A", 0},
		{"letter outside pool", pool, []string{"London"}, "C", 0},
		{"only first target counts", pool, []string{"Paris", "London"}, "B", 0},
		{"empty pool", nil, []string{"London"}, "B", 0},
		{"empty targets", pool, nil, "B", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustScore(t, build(tc.pool, tc.correct), domain.AnswerSet{"q1": domain.SingleAnswer(tc.answer)})
			if res.AchievedScore != tc.want || res.MaxPossibleScore != 1.5 {
				t.Fatalf("expected %v/1.5, got %+v", tc.want, res)
			}
		})
	}
}

func TestUnsupportedQuestionCountsTowardsMax(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: "essay", Questions: []domain.Question{
		domain.UnsupportedQuestion{QuestionBase: domain.QuestionBase{ID: "q1", Points: 5}, RawType: "essay"},
		mcq("q2", 1, domain.Option{ID: "o1", IsCorrect: true}),
	}})
	res := mustScore(t, exam, domain.AnswerSet{"q1": domain.SingleAnswer("anything"), "q2": domain.SingleAnswer("o1")})
	if res.AchievedScore != 1 || res.MaxPossibleScore != 6 {
		t.Fatalf("expected 1/6, got %+v", res)
	}
}

func TestWhitespaceAnswerIsUnanswered(t *testing.T) {
	exam := examWith(domain.Block{ID: "b1", BlockType: domain.TypeMatching, Questions: []domain.Question{
		domain.MatchingQuestion{
			QuestionBase: domain.QuestionBase{ID: "q1", Points: 1},
			Pairs:        []domain.MatchingPair{{ID: "p1"}},
		},
	}})
	outcomes, err := scoring.Breakdown(exam, domain.AnswerSet{"q1": domain.SingleAnswer("   ")})
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Answered || outcomes[0].Correct {
		t.Fatalf("expected one unanswered outcome, got %+v", outcomes)
	}
}

func TestEndToEndScenario(t *testing.T) {
	exam := examWith(
		domain.Block{ID: "b1", BlockType: domain.TypeMultipleChoice, Questions: []domain.Question{
			mcq("mc1", 1, domain.Option{ID: "o1", IsCorrect: true}, domain.Option{ID: "o2"}),
			mcq("mc2", 1, domain.Option{ID: "o1", IsCorrect: true}, domain.Option{ID: "o2"}),
		}},
		domain.Block{ID: "b2", BlockType: domain.TypeTrueFalse, Questions: []domain.Question{
			domain.TrueFalseQuestion{QuestionBase: domain.QuestionBase{ID: "tf1", Points: 3}, CorrectAnswer: boolPtr(true)},
		}},
	)
	res := mustScore(t, exam, domain.AnswerSet{
		"mc1": domain.SingleAnswer("o1"),
		"mc2": domain.SingleAnswer("o2"),
	})
	if res.AchievedScore != 1 || res.MaxPossibleScore != 5 {
		t.Fatalf("expected 1/5, got %+v", res)
	}
}

func TestPoolLetter(t *testing.T) {
	if scoring.PoolLetter(0) != "A" || scoring.PoolLetter(25) != "Z" {
		t.Fatalf("unexpected letters %q %q", scoring.PoolLetter(0), scoring.PoolLetter(25))
	}
}

// sampleExam holds one correctly answerable question of every type; 6 points total.
func sampleExam() *domain.Exam {
	return examWith(
		domain.Block{ID: "b1", BlockType: domain.TypeMultipleChoice, Questions: []domain.Question{
			mcq("mc1", 2, domain.Option{ID: "o1"}, domain.Option{ID: "o2", IsCorrect: true}),
		}},
		domain.Block{ID: "b2", BlockType: domain.TypeTrueFalse, Questions: []domain.Question{
			domain.TrueFalseQuestion{QuestionBase: domain.QuestionBase{ID: "tf1", Points: 1}, CorrectAnswer: boolPtr(true)},
		}},
		domain.Block{ID: "b3", BlockType: domain.TypeMatching, Questions: []domain.Question{
			domain.MatchingQuestion{
				QuestionBase: domain.QuestionBase{ID: "m1", Points: 1},
				Pairs:        []domain.MatchingPair{{ID: "p1", Premise: "P1", Response: "R1", ResponseLetter: "A"}},
			},
		}},
		domain.Block{
			ID:         "b4",
			BlockType:  domain.TypePooledChoices,
			ChoicePool: []domain.PoolOption{{ID: "c1", Text: "Paris"}, {ID: "c2", Text: "London"}},
			Questions: []domain.Question{
				domain.PooledChoicesQuestion{QuestionBase: domain.QuestionBase{ID: "p1", Points: 2}, CorrectAnswersFromPool: []string{"London"}},
			},
		},
	)
}
