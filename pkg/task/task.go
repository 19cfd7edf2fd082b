package task

import (
	"errors"
	"fmt"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	Id        int
	Title     string
	Notes     string
	DueDate   time.Time // zero value means no due date
	Done      bool
	CreatedAt time.Time
}

// DueDateParser resolves free-form quick-capture text into a due date.
// The natural-language implementation lives outside this module; the
// default accepts RFC3339 instants and plain calendar dates.
type DueDateParser func(text string, location *time.Location) (time.Time, error)

func DefaultDueDateParser(text string, location *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", text, location); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported due date format: %q", text)
}
