package task

import (
	"context"
	"sort"
)

type StubTaskRepo struct {
	nextId int
	data   map[int]map[int]Task
}

func NewStubTaskRepo() *StubTaskRepo {
	return &StubTaskRepo{data: map[int]map[int]Task{}}
}

func (s *StubTaskRepo) Store(ctx context.Context, userId int, task Task) (int, error) {
	s.nextId++
	task.Id = s.nextId
	if s.data[userId] == nil {
		s.data[userId] = map[int]Task{}
	}
	s.data[userId][task.Id] = task
	return task.Id, nil
}

func (s *StubTaskRepo) GetAll(ctx context.Context, userId int, includeDone bool) ([]Task, error) {
	var tasks []Task
	for _, task := range s.data[userId] {
		if !includeDone && task.Done {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Id < tasks[j].Id })
	return tasks, nil
}

func (s *StubTaskRepo) Get(ctx context.Context, userId int, taskId int) (Task, error) {
	task, ok := s.data[userId][taskId]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *StubTaskRepo) Update(ctx context.Context, userId int, task Task) (bool, error) {
	if _, ok := s.data[userId][task.Id]; !ok {
		return false, nil
	}
	s.data[userId][task.Id] = task
	return true, nil
}

func (s *StubTaskRepo) Delete(ctx context.Context, userId int, taskId int) (bool, error) {
	if _, ok := s.data[userId][taskId]; !ok {
		return false, nil
	}
	delete(s.data[userId], taskId)
	return true, nil
}
