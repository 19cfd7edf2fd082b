package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daymark/daymark/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type TaskDTO struct {
	Id      int    `json:"id"`
	Title   string `json:"title"`
	Notes   string `json:"notes,omitempty"`
	DueDate string `json:"dueDate,omitempty"`
	Done    bool   `json:"done"`
}

type captureTaskRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Due   string `json:"due"`
}

type taskStatusRequest struct {
	Done bool `json:"done"`
}

type TaskHandler struct {
	taskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CaptureTask godoc
// @Summary Capture a new task
// @Tags Task
// @Accept json
// @Produce json
// @Param task body captureTaskRequest true "Task"
// @Success 201 {object} TaskDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/task [post]
// @Security XUserId
func (h *TaskHandler) CaptureTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Capturing new task")

	var req captureTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Invalid request body format")
		return
	}
	if req.Title == "" {
		h.writeBadRequest(w, "Title is required")
		return
	}

	task, err := h.taskService.Capture(r.Context(), req.Title, req.Notes, req.Due)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(taskToDTO(task)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetTasks godoc
// @Summary List the user's tasks
// @Tags Task
// @Produce json
// @Success 200 {array} TaskDTO
// @Router /api/task [get]
// @Security XUserId
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	includeDone := r.URL.Query().Get("includeDone") == "true"
	tasks, err := h.taskService.GetAll(r.Context(), includeDone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, taskToDTO(t))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetTaskStatus godoc
// @Summary Mark a task done or not done
// @Tags Task
// @Accept json
// @Produce json
// @Param taskId path int true "Task ID"
// @Param status body taskStatusRequest true "Status"
// @Success 200 {object} TaskDTO
// @Router /api/task/{taskId}/status [put]
// @Security XUserId
func (h *TaskHandler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	taskId, err := strconv.Atoi(mux.Vars(r)["taskId"])
	if err != nil {
		h.writeBadRequest(w, "Invalid task id")
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Invalid request body format")
		return
	}

	task, err := h.taskService.SetDone(r.Context(), taskId, req.Done)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(taskToDTO(task)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags Task
// @Param taskId path int true "Task ID"
// @Success 204
// @Router /api/task/{taskId} [delete]
// @Security XUserId
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(mux.Vars(r)["taskId"])
	if err != nil {
		h.writeBadRequest(w, "Invalid task id")
		return
	}

	if err := h.taskService.Delete(r.Context(), taskId); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) writeBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func taskToDTO(task Task) TaskDTO {
	dto := TaskDTO{
		Id:    task.Id,
		Title: task.Title,
		Notes: task.Notes,
		Done:  task.Done,
	}
	if !task.DueDate.IsZero() {
		dto.DueDate = task.DueDate.Format(time.RFC3339)
	}
	return dto
}
