package store

import (
	"fmt"

	"github.com/pavelanni/practice/internal/model"
)

// ExportTaskSet builds a task set from the generated tasks of topic, ready to
// be written as a practice file. An empty topic exports every task.
func (s *Store) ExportTaskSet(topic, level string) (*model.TaskSet, error) {
	generated, err := s.ListGeneratedTasks(topic, "")
	if err != nil {
		return nil, fmt.Errorf("list generated tasks: %w", err)
	}

	set := &model.TaskSet{Level: level, Title: topic}
	seen := make(map[string]int)
	for _, g := range generated {
		task := g.Task
		// Generated ids repeat across runs of the same topic.
		if task.ID != "" {
			seen[task.ID]++
			if n := seen[task.ID]; n > 1 {
				task.ID = fmt.Sprintf("%s-%d", task.ID, n)
			}
		}
		set.Tasks = append(set.Tasks, task)
	}
	return set, nil
}
