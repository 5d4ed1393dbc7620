package db

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTaskNotFound  = errs.New("task not found", http.StatusNotFound)
	ErrInvalidBudget = errs.New("task budget is out of range", http.StatusBadRequest)
)

type TaskRepository interface {
	CreateTask(task *models.Task) error
	UpdateTask(task *models.Task) error
	DeleteTask(taskID uint) error
	FindTaskByID(taskID uint) (*models.Task, error)
	ListTasks(filter models.TaskFilter) ([]models.Task, int64, error)
	CreateCreatorTask(task *models.Task) (*models.Task, error)
	ReviewCreatorTask(taskID, adminID uint, approve bool, reason string) (*models.Task, error)
	CancelCreatorTask(taskID, creatorID uint) (*models.Task, int64, error)
	SetTaskStatus(taskID, ownerID uint, from []string, to string) (*models.Task, error)
}

type taskRepo struct {
	DB *gorm.DB
}

func NewTaskRepo(db *GormDB) TaskRepository {
	return &taskRepo{db.DB}
}

func (t *taskRepo) CreateTask(task *models.Task) error {
	return t.DB.Create(task).Error
}

func (t *taskRepo) UpdateTask(task *models.Task) error {
	return t.DB.Save(task).Error
}

func (t *taskRepo) DeleteTask(taskID uint) error {
	result := t.DB.Delete(&models.Task{}, taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (t *taskRepo) FindTaskByID(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := t.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (t *taskRepo) ListTasks(filter models.TaskFilter) ([]models.Task, int64, error) {
	var (
		tasks []models.Task
		total int64
	)
	q := t.DB.Model(&models.Task{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.CreatedBy != 0 {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Creator != nil {
		q = q.Where("is_creator_task = ?", *filter.Creator)
	}
	if filter.OpenAt != nil {
		q = q.Where("(expires_at IS NULL OR expires_at > ?)", *filter.OpenAt)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count tasks")
	}
	p := filter.Pagination.Normalize()
	if err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&tasks).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list tasks")
	}
	return tasks, total, nil
}

// CreateCreatorTask debits the full budget from the creator wallet and stores the task as pending.
func (t *taskRepo) CreateCreatorTask(task *models.Task) (*models.Task, error) {
	budget, err := models.MulCoins(task.Reward, task.MaxCompletions)
	if err != nil || budget <= 0 {
		return nil, ErrInvalidBudget
	}
	task.IsCreatorTask = true
	task.Status = models.TaskStatusPending
	task.Budget = budget

	err = t.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return errors.Wrap(err, "create task")
		}
		_, err := applyCoins(tx, task.CreatedBy, models.Transaction{
			Type:        models.TxCreatorDebit,
			Wallet:      models.WalletCreator,
			Coins:       -task.Budget,
			Description: fmt.Sprintf("Budget for task %q", task.Title),
			Reference:   reference("task", task.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func lockTask(tx *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, errors.Wrap(err, "lock task")
	}
	return &task, nil
}

// ReviewCreatorTask publishes a pending creator task or rejects it and refunds the budget.
func (t *taskRepo) ReviewCreatorTask(taskID, adminID uint, approve bool, reason string) (*models.Task, error) {
	var task *models.Task
	err := t.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = lockTask(tx, taskID)
		if err != nil {
			return err
		}
		if !task.IsCreatorTask || task.Status != models.TaskStatusPending {
			return errs.ErrInvalidTransition
		}

		if approve {
			task.Status = models.TaskStatusActive
			task.RejectionReason = ""
			return tx.Model(task).Updates(map[string]interface{}{"status": task.Status, "rejection_reason": ""}).Error
		}

		task.Status = models.TaskStatusRejected
		task.RejectionReason = reason
		if err := tx.Model(task).Updates(map[string]interface{}{"status": task.Status, "rejection_reason": reason}).Error; err != nil {
			return err
		}
		_, err = applyCoins(tx, task.CreatedBy, models.Transaction{
			Type:        models.TxCreatorCredit,
			Wallet:      models.WalletCreator,
			Coins:       task.Budget,
			Description: fmt.Sprintf("Refund for rejected task %q", task.Title),
			Reference:   reference("task", task.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CancelCreatorTask stops a creator task and refunds the budget not held by taken slots.
func (t *taskRepo) CancelCreatorTask(taskID, creatorID uint) (*models.Task, int64, error) {
	var (
		task   *models.Task
		refund int64
	)
	err := t.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = lockTask(tx, taskID)
		if err != nil {
			return err
		}
		if !task.IsCreatorTask || task.CreatedBy != creatorID {
			return ErrTaskNotFound
		}
		switch task.Status {
		case models.TaskStatusPending, models.TaskStatusActive, models.TaskStatusPaused:
		default:
			return errs.ErrInvalidTransition
		}

		refund = task.UnreservedBudget()
		task.Budget -= refund
		task.Status = models.TaskStatusCancelled
		if err := tx.Model(task).Updates(map[string]interface{}{"status": task.Status, "budget": task.Budget}).Error; err != nil {
			return err
		}
		if refund == 0 {
			return nil
		}
		_, err = applyCoins(tx, creatorID, models.Transaction{
			Type:        models.TxCreatorCredit,
			Wallet:      models.WalletCreator,
			Coins:       refund,
			Description: fmt.Sprintf("Unused budget of cancelled task %q", task.Title),
			Reference:   reference("task", task.ID),
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return task, refund, nil
}

// SetTaskStatus moves a task owned by ownerID (0 for any owner) from one of the given states to another.
func (t *taskRepo) SetTaskStatus(taskID, ownerID uint, from []string, to string) (*models.Task, error) {
	q := t.DB.Model(&models.Task{}).Where("id = ? AND status IN ?", taskID, from)
	if ownerID != 0 {
		q = q.Where("created_by = ?", ownerID)
	}
	result := q.Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := t.FindTaskByID(taskID); err != nil {
			return nil, err
		}
		return nil, errs.ErrInvalidTransition
	}
	return t.FindTaskByID(taskID)
}
