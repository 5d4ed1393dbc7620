package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
)

var ErrProofRequired = apiError.New("a proof image is required for this task", http.StatusBadRequest)

type TaskService interface {
	ListTasks(userID uint, filter models.TaskFilter) (*models.PagedResult, error)
	GetTask(userID, taskID uint) (*models.TaskView, error)
	CompleteTask(ctx context.Context, user *models.User, taskID uint, proof *multipart.FileHeader) (*models.TaskSubmission, error)
	ListMySubmissions(userID uint, filter models.SubmissionFilter) (*models.PagedResult, error)

	ListAllTasks(filter models.TaskFilter) (*models.PagedResult, error)
	CreateTask(adminID uint, req *models.TaskRequest) (*models.Task, error)
	UpdateTask(taskID uint, req *models.TaskRequest) (*models.Task, error)
	DeleteTask(taskID uint) error
	SetTaskActive(taskID uint, active bool) (*models.Task, error)
	ReviewCreatorTask(adminID, taskID uint, approve bool, reason string) (*models.Task, error)
	ListSubmissions(filter models.SubmissionFilter) (*models.PagedResult, error)
	ReviewSubmission(adminID, submissionID uint, approve bool, reason string) (*models.TaskSubmission, error)
}

type taskService struct {
	Config         *config.Config
	taskRepo       db.TaskRepository
	submissionRepo db.SubmissionRepository
	authRepo       db.AuthRepository
	media          MediaService
	notifier       NotificationService
}

func NewTaskService(taskRepo db.TaskRepository, submissionRepo db.SubmissionRepository, authRepo db.AuthRepository,
	media MediaService, notifier NotificationService, conf *config.Config) TaskService {
	return &taskService{
		Config:         conf,
		taskRepo:       taskRepo,
		submissionRepo: submissionRepo,
		authRepo:       authRepo,
		media:          media,
		notifier:       notifier,
	}
}

// ListTasks returns the active tasks a user can see, each with that user's submission status.
func (t *taskService) ListTasks(userID uint, filter models.TaskFilter) (*models.PagedResult, error) {
	now := time.Now()
	filter.Status = models.TaskStatusActive
	filter.CreatedBy = 0
	filter.OpenAt = &now
	tasks, total, err := t.taskRepo.ListTasks(filter)
	if err != nil {
		return nil, err
	}
	views, err := t.withSubmissionStatus(userID, tasks)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(views, total, filter.Pagination), nil
}

func (t *taskService) withSubmissionStatus(userID uint, tasks []models.Task) ([]models.TaskView, error) {
	ids := make([]uint, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	statuses, err := t.submissionRepo.SubmissionStatusesForUser(userID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.TaskView, len(tasks))
	for i := range tasks {
		views[i] = models.TaskView{Task: tasks[i], SubmissionStatus: statuses[tasks[i].ID]}
	}
	return views, nil
}

func (t *taskService) GetTask(userID, taskID uint) (*models.TaskView, error) {
	task, err := t.taskRepo.FindTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	visible := task.Status == models.TaskStatusActive && !task.IsExpired(time.Now())
	if !visible && task.CreatedBy != userID {
		return nil, db.ErrTaskNotFound
	}
	views, err := t.withSubmissionStatus(userID, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CompleteTask records the user's completion. Tasks without proof are approved and paid
// at once; tasks with proof wait for review.
func (t *taskService) CompleteTask(ctx context.Context, user *models.User, taskID uint, proof *multipart.FileHeader) (*models.TaskSubmission, error) {
	task, err := t.taskRepo.FindTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAvailable(time.Now()) || (task.IsCreatorTask && task.CreatedBy == user.ID) {
		return nil, apiError.ErrTaskUnavailable
	}
	statuses, err := t.submissionRepo.SubmissionStatusesForUser(user.ID, []uint{task.ID})
	if err != nil {
		return nil, err
	}
	if _, done := statuses[task.ID]; done {
		return nil, apiError.ErrAlreadySubmitted
	}

	sub := &models.TaskSubmission{TaskID: task.ID, UserID: user.ID}
	if task.RequiresProof {
		if proof == nil {
			return nil, ErrProofRequired
		}
		upload, err := t.media.UploadFile(ctx, proof, FolderProofs)
		if err != nil {
			return nil, err
		}
		sub.ProofURL = upload.URL
	}

	sub, err = t.submissionRepo.CreateSubmission(sub, !task.RequiresProof)
	if err != nil {
		return nil, err
	}
	sub.Task = task

	logger.Info("task completed", "user_id", user.ID, "task_id", task.ID, "status", sub.Status)
	if sub.Status == models.StatusApproved {
		t.notifier.Notify(user, models.NotifySubmission, "Coins earned",
			fmt.Sprintf("You earned %d coins for %q.", sub.Reward, task.Title))
	}
	return sub, nil
}

func (t *taskService) ListMySubmissions(userID uint, filter models.SubmissionFilter) (*models.PagedResult, error) {
	filter.UserID = userID
	return t.ListSubmissions(filter)
}

func (t *taskService) ListAllTasks(filter models.TaskFilter) (*models.PagedResult, error) {
	tasks, total, err := t.taskRepo.ListTasks(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(tasks, total, filter.Pagination), nil
}

func taskFromRequest(task *models.Task, req *models.TaskRequest) {
	task.Title = req.Title
	task.Description = req.Description
	task.Type = req.Type
	task.Link = req.Link
	task.Reward = req.Reward
	task.RequiresProof = req.RequiresProof
	task.MaxCompletions = req.MaxCompletions
	task.ExpiresAt = req.ExpiresAt
}

func (t *taskService) CreateTask(adminID uint, req *models.TaskRequest) (*models.Task, error) {
	task := &models.Task{CreatedBy: adminID, Status: models.TaskStatusActive}
	taskFromRequest(task, req)
	if err := t.taskRepo.CreateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask edits an admin task. Creator tasks keep their funded reward and size.
func (t *taskService) UpdateTask(taskID uint, req *models.TaskRequest) (*models.Task, error) {
	task, err := t.taskRepo.FindTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCreatorTask && (req.Reward != task.Reward || req.MaxCompletions != task.MaxCompletions) {
		return nil, apiError.New("reward and max completions of a creator task cannot be changed", http.StatusBadRequest)
	}
	if req.MaxCompletions > 0 && req.MaxCompletions < task.CompletedCount {
		return nil, apiError.New("max completions is below the completions already taken", http.StatusBadRequest)
	}
	taskFromRequest(task, req)
	if task.Status == models.TaskStatusCompleted && task.IsAvailable(time.Now()) {
		task.Status = models.TaskStatusActive
	}
	if err := t.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (t *taskService) DeleteTask(taskID uint) error {
	task, err := t.taskRepo.FindTaskByID(taskID)
	if err != nil {
		return err
	}
	if task.IsCreatorTask {
		return apiError.New("creator tasks are cancelled by their creator or rejected, not deleted", http.StatusConflict)
	}
	return t.taskRepo.DeleteTask(taskID)
}

func (t *taskService) SetTaskActive(taskID uint, active bool) (*models.Task, error) {
	if active {
		return t.taskRepo.SetTaskStatus(taskID, 0, []string{models.TaskStatusPaused}, models.TaskStatusActive)
	}
	return t.taskRepo.SetTaskStatus(taskID, 0, []string{models.TaskStatusActive}, models.TaskStatusPaused)
}

func (t *taskService) ReviewCreatorTask(adminID, taskID uint, approve bool, reason string) (*models.Task, error) {
	if !approve && reason == "" {
		return nil, apiError.New("a rejection reason is required", http.StatusBadRequest)
	}
	task, err := t.taskRepo.ReviewCreatorTask(taskID, adminID, approve, reason)
	if err != nil {
		return nil, err
	}
	logger.Info("creator task reviewed", "task_id", task.ID, "admin_id", adminID, "status", task.Status)

	if creator, err := t.authRepo.FindUserByID(task.CreatedBy); err == nil {
		if approve {
			t.notifier.Notify(creator, models.NotifyTask, "Task approved", fmt.Sprintf("Your task %q is now live.", task.Title))
		} else {
			t.notifier.Notify(creator, models.NotifyTask, "Task rejected",
				fmt.Sprintf("Your task %q was rejected: %s. %d coins were returned to your creator wallet.", task.Title, reason, task.Budget))
		}
	}
	return task, nil
}

func (t *taskService) ListSubmissions(filter models.SubmissionFilter) (*models.PagedResult, error) {
	subs, total, err := t.submissionRepo.ListSubmissions(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(subs, total, filter.Pagination), nil
}

func (t *taskService) ReviewSubmission(adminID, submissionID uint, approve bool, reason string) (*models.TaskSubmission, error) {
	if !approve && reason == "" {
		return nil, apiError.New("a rejection reason is required", http.StatusBadRequest)
	}
	sub, err := t.submissionRepo.ReviewSubmission(submissionID, adminID, approve, reason)
	if err != nil {
		return nil, err
	}
	logger.Info("submission reviewed", "submission_id", sub.ID, "admin_id", adminID, "status", sub.Status)

	user, err := t.authRepo.FindUserByID(sub.UserID)
	if err != nil {
		logger.Warn("submission owner not found", "user_id", sub.UserID, "error", err)
		return sub, nil
	}
	title := "your task"
	if sub.Task != nil {
		title = fmt.Sprintf("%q", sub.Task.Title)
	}
	if approve {
		t.notifier.Notify(user, models.NotifySubmission, "Submission approved",
			fmt.Sprintf("You earned %d coins for %s.", sub.Reward, title))
	} else {
		t.notifier.Notify(user, models.NotifySubmission, "Submission rejected",
			fmt.Sprintf("Your submission for %s was rejected: %s", title, reason))
	}
	return sub, nil
}
