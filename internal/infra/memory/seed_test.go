package memory

import (
	"os"
	"path/filepath"
	"testing"

	"exam-scoring-service/internal/domain"
)

func TestReadExamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.json")
	raw := `[{"id":"e1","title":"One","blocks":[{"id":"b1","blockType":"true-false",
		"questions":[{"id":"q1","type":"true-false","points":2,"correctAnswer":true}]}]}]`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	exams, err := ReadExamsFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	exam, ok := exams["e1"]
	if !ok || exam.ComputedTotalPoints() != 2 {
		t.Fatalf("unexpected exams %+v", exams)
	}
	if _, ok := exam.Blocks[0].Questions[0].(domain.TrueFalseQuestion); !ok {
		t.Fatalf("expected true-false question, got %#v", exam.Blocks[0].Questions[0])
	}

	if err := os.WriteFile(path, []byte(`[{"title":"no id"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadExamsFile(path); err == nil {
		t.Fatalf("expected error for exam without id")
	}
}
