package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/practice/internal/model"

	_ "modernc.org/sqlite"
)

// Store keeps the persistent settings and the history of generated tasks.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generated_tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL,
		type TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_generated_tasks_topic ON generated_tasks(topic);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertGeneratedTask stores a generated task under its topic.
func (s *Store) InsertGeneratedTask(topic string, task model.Task) (int64, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return 0, fmt.Errorf("encode task: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO generated_tasks (topic, type, body, created_at) VALUES (?, ?, ?, ?)`,
		topic, string(task.Type), string(body), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGeneratedTasks returns generated tasks in insertion order.
// Empty strings mean no filtering on that field.
func (s *Store) ListGeneratedTasks(topic string, typ model.Type) ([]model.GeneratedTask, error) {
	query := `SELECT id, topic, type, body, created_at FROM generated_tasks WHERE 1=1`
	var args []any
	if topic != "" {
		query += ` AND topic = ?`
		args = append(args, topic)
	}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.GeneratedTask
	for rows.Next() {
		var (
			g    model.GeneratedTask
			body string
		)
		if err := rows.Scan(&g.ID, &g.Topic, &g.Type, &body, &g.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(body), &g.Task); err != nil {
			return nil, fmt.Errorf("decode generated task %d: %w", g.ID, err)
		}
		tasks = append(tasks, g)
	}
	return tasks, rows.Err()
}

// ListTopics returns the distinct topics of the generated tasks, sorted.
func (s *Store) ListTopics() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT topic FROM generated_tasks ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// GeneratedTaskCount returns the number of stored generated tasks.
func (s *Store) GeneratedTaskCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM generated_tasks`).Scan(&n)
	return n, err
}
