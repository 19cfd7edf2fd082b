package task

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type TaskRepo interface {
	Store(ctx context.Context, userId int, task Task) (int, error)
	GetAll(ctx context.Context, userId int, includeDone bool) ([]Task, error)
	Get(ctx context.Context, userId int, taskId int) (Task, error)
	Update(ctx context.Context, userId int, task Task) (bool, error)
	Delete(ctx context.Context, userId int, taskId int) (bool, error)
}

type TaskRepoImpl struct {
	db *pgxpool.Pool
}

func NewTaskRepo(db *pgxpool.Pool) *TaskRepoImpl {
	return &TaskRepoImpl{db: db}
}

func (r *TaskRepoImpl) Store(ctx context.Context, userId int, task Task) (int, error) {
	query := `INSERT INTO task (user_id, title, notes, due_date, done, created_at)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var dueDateParam interface{}
	if !task.DueDate.IsZero() {
		dueDateParam = task.DueDate
	}

	var id int
	err := r.db.QueryRow(ctx, query,
		userId,
		task.Title,
		task.Notes,
		dueDateParam,
		task.Done,
		task.CreatedAt,
	).Scan(&id)
	if err != nil {
		log.Errorf("could not store task: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *TaskRepoImpl) GetAll(ctx context.Context, userId int, includeDone bool) ([]Task, error) {
	query := `SELECT id, title, notes, due_date, done, created_at FROM task
				WHERE user_id = $1 ORDER BY due_date NULLS LAST, created_at`
	if !includeDone {
		query = `SELECT id, title, notes, due_date, done, created_at FROM task
				WHERE user_id = $1 AND done = false ORDER BY due_date NULLS LAST, created_at`
	}

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("could not query tasks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepoImpl) Get(ctx context.Context, userId int, taskId int) (Task, error) {
	query := `SELECT id, title, notes, due_date, done, created_at FROM task WHERE user_id = $1 AND id = $2`
	task, err := scanTask(r.db.QueryRow(ctx, query, userId, taskId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	} else if err != nil {
		log.Errorf("could not get task %d: %v", taskId, err)
		return Task{}, err
	}
	return task, nil
}

func (r *TaskRepoImpl) Update(ctx context.Context, userId int, task Task) (bool, error) {
	query := `UPDATE task SET title = $1, notes = $2, due_date = $3, done = $4 WHERE user_id = $5 AND id = $6`

	var dueDateParam interface{}
	if !task.DueDate.IsZero() {
		dueDateParam = task.DueDate
	}

	result, err := r.db.Exec(ctx, query,
		task.Title,
		task.Notes,
		dueDateParam,
		task.Done,
		userId,
		task.Id,
	)
	if err != nil {
		log.Errorf("could not update task %d: %v", task.Id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *TaskRepoImpl) Delete(ctx context.Context, userId int, taskId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM task WHERE user_id = $1 AND id = $2`, userId, taskId)
	if err != nil {
		log.Errorf("could not delete task %d: %v", taskId, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var task Task
	var dueDate *time.Time
	err := row.Scan(
		&task.Id,
		&task.Title,
		&task.Notes,
		&dueDate,
		&task.Done,
		&task.CreatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if dueDate != nil {
		task.DueDate = *dueDate
	}
	return task, nil
}
