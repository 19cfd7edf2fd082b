package task

import (
	"context"
	"fmt"
	"time"

	"github.com/daymark/daymark/internal/utils"
	"github.com/daymark/daymark/pkg/user"
	log "github.com/sirupsen/logrus"
)

type TaskService interface {
	Capture(ctx context.Context, title string, notes string, dueText string) (Task, error)
	GetAll(ctx context.Context, includeDone bool) ([]Task, error)
	SetDone(ctx context.Context, taskId int, done bool) (Task, error)
	Delete(ctx context.Context, taskId int) error
}

type TaskServiceImpl struct {
	repo      TaskRepo
	dueParser DueDateParser
	clock     utils.Clock
}

func NewTaskService(repo TaskRepo, dueParser DueDateParser, clock utils.Clock) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo, dueParser: dueParser, clock: clock}
}

// Capture stores a quickly captured task. A non-empty dueText is resolved
// through the injected due date parser in the user's timezone.
func (s *TaskServiceImpl) Capture(ctx context.Context, title string, notes string, dueText string) (Task, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("failed to get current user: %w", err)
	}

	task := Task{
		Title:     title,
		Notes:     notes,
		CreatedAt: s.clock.Now(),
	}

	if dueText != "" {
		location, err := time.LoadLocation(currentUser.Settings.Timezone)
		if err != nil {
			log.Warnf("invalid timezone %q for user %d, using UTC", currentUser.Settings.Timezone, currentUser.Id)
			location = time.UTC
		}
		dueDate, err := s.dueParser(dueText, location)
		if err != nil {
			return Task{}, err
		}
		task.DueDate = dueDate
	}

	taskId, err := s.repo.Store(ctx, currentUser.Id, task)
	if err != nil {
		return Task{}, err
	}
	task.Id = taskId
	return task, nil
}

func (s *TaskServiceImpl) GetAll(ctx context.Context, includeDone bool) ([]Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, includeDone)
}

func (s *TaskServiceImpl) SetDone(ctx context.Context, taskId int, done bool) (Task, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("failed to get current user: %w", err)
	}

	task, err := s.repo.Get(ctx, userId, taskId)
	if err != nil {
		return Task{}, err
	}
	task.Done = done

	updated, err := s.repo.Update(ctx, userId, task)
	if err != nil {
		return Task{}, err
	}
	if !updated {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, taskId int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, taskId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
