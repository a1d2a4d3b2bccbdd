package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"pomotimer/internal/domain"
)

// Add creates an open task.
func (d *DB) Add(title string) (domain.Task, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return domain.Task{}, err
	}
	now := d.now()
	res, err := d.db.Exec(
		`INSERT INTO tasks (title, done, created_at, updated_at) VALUES (?, 0, ?, ?);`,
		title, formatTime(now), formatTime(now),
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("add task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, fmt.Errorf("add task: %w", err)
	}
	return d.get(id)
}

// List returns open tasks first, each group oldest first.
func (d *DB) List() ([]domain.Task, error) {
	rows, err := d.db.Query(`SELECT id, title, done, created_at, updated_at FROM tasks ORDER BY done, id;`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// SetDone marks a task complete or reopens it.
func (d *DB) SetDone(id int64, done bool) (domain.Task, error) {
	if err := d.update(`UPDATE tasks SET done = ?, updated_at = ? WHERE id = ?;`, done, formatTime(d.now()), id); err != nil {
		return domain.Task{}, err
	}
	return d.get(id)
}

// Rename changes a task's title.
func (d *DB) Rename(id int64, title string) (domain.Task, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return domain.Task{}, err
	}
	if err := d.update(`UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?;`, title, formatTime(d.now()), id); err != nil {
		return domain.Task{}, err
	}
	return d.get(id)
}

// Delete removes a task.
func (d *DB) Delete(id int64) error {
	return d.update(`DELETE FROM tasks WHERE id = ?;`, id)
}

func (d *DB) update(query string, args ...any) error {
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (d *DB) get(id int64) (domain.Task, error) {
	row := d.db.QueryRow(`SELECT id, title, done, created_at, updated_at FROM tasks WHERE id = ?;`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, err
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		task             domain.Task
		created, updated string
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Done, &created, &updated); err != nil {
		return domain.Task{}, err
	}
	var err error
	if task.CreatedAt, err = parseTime(created); err != nil {
		return domain.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}
