package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"exam-scoring-service/internal/domain"
)

// ReadExamsFile reads a JSON array of exams keyed by id.
func ReadExamsFile(path string) (map[string]domain.Exam, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []domain.Exam
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	exams := make(map[string]domain.Exam, len(list))
	for _, exam := range list {
		if exam.ID == "" {
			return nil, fmt.Errorf("decode %s: exam without id", path)
		}
		exams[exam.ID] = exam
	}
	return exams, nil
}
