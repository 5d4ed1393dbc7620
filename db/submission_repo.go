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

var ErrSubmissionNotFound = errs.New("submission not found", http.StatusNotFound)

type SubmissionRepository interface {
	CreateSubmission(sub *models.TaskSubmission, autoApprove bool) (*models.TaskSubmission, error)
	ReviewSubmission(submissionID, adminID uint, approve bool, reason string) (*models.TaskSubmission, error)
	FindSubmissionByID(submissionID uint) (*models.TaskSubmission, error)
	ListSubmissions(filter models.SubmissionFilter) ([]models.TaskSubmission, int64, error)
	SubmissionStatusesForUser(userID uint, taskIDs []uint) (map[uint]string, error)
}

type submissionRepo struct {
	DB *gorm.DB
}

func NewSubmissionRepo(db *GormDB) SubmissionRepository {
	return &submissionRepo{db.DB}
}

// CreateSubmission takes a completion slot on the task. With autoApprove the reward is
// credited in the same transaction.
func (s *submissionRepo) CreateSubmission(sub *models.TaskSubmission, autoApprove bool) (*models.TaskSubmission, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, sub.TaskID)
		if err != nil {
			return err
		}
		if task.IsCreatorTask && task.CreatedBy == sub.UserID {
			return errs.ErrTaskUnavailable
		}
		if !task.IsAvailable(time.Now()) {
			return errs.ErrTaskUnavailable
		}

		var existing int64
		if err := tx.Unscoped().Model(&models.TaskSubmission{}).
			Where("task_id = ? AND user_id = ?", sub.TaskID, sub.UserID).
			Count(&existing).Error; err != nil {
			return errors.Wrap(err, "count submissions")
		}
		if existing > 0 {
			return errs.ErrAlreadySubmitted
		}

		sub.Reward = task.Reward
		sub.Status = models.StatusPending
		if autoApprove {
			now := time.Now()
			sub.Status = models.StatusApproved
			sub.ReviewedAt = &now
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(sub).Error; err != nil {
			return errors.Wrap(err, "create submission")
		}
		if sub.ID == 0 {
			return errs.ErrAlreadySubmitted
		}

		task.TakeSlot()
		updates := map[string]interface{}{"completed_count": task.CompletedCount, "status": task.Status}
		if autoApprove {
			task.Spent += task.Reward
			updates["spent"] = task.Spent
		}
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update task")
		}

		if autoApprove {
			_, err := applyCoins(tx, sub.UserID, models.Transaction{
				Type:        models.TxEarned,
				Coins:       task.Reward,
				Description: fmt.Sprintf("Completed task %q", task.Title),
				Reference:   reference("submission", sub.ID),
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ReviewSubmission settles a pending submission. Approval credits the reward; rejection
// frees the slot, and refunds the creator when the task was cancelled meanwhile.
func (s *submissionRepo) ReviewSubmission(submissionID, adminID uint, approve bool, reason string) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return errors.Wrap(err, "lock submission")
		}
		if sub.Status != models.StatusPending {
			return errs.ErrInvalidTransition
		}

		task, err := lockTask(tx, sub.TaskID)
		if err != nil {
			return err
		}

		now := time.Now()
		sub.ReviewedBy = &adminID
		sub.ReviewedAt = &now

		if approve {
			sub.Status = models.StatusApproved
			task.Spent += sub.Reward
			if err := tx.Model(task).Update("spent", task.Spent).Error; err != nil {
				return errors.Wrap(err, "update task")
			}
			if _, err := applyCoins(tx, sub.UserID, models.Transaction{
				Type:        models.TxEarned,
				Coins:       sub.Reward,
				Description: fmt.Sprintf("Completed task %q", task.Title),
				Reference:   reference("submission", sub.ID),
			}); err != nil {
				return err
			}
		} else {
			sub.Status = models.StatusRejected
			sub.RejectionReason = reason
			if task.Status == models.TaskStatusCancelled && task.IsCreatorTask {
				if task.CompletedCount > 0 {
					task.CompletedCount--
				}
				task.Budget -= sub.Reward
				if _, err := applyCoins(tx, task.CreatedBy, models.Transaction{
					Type:        models.TxCreatorCredit,
					Wallet:      models.WalletCreator,
					Coins:       sub.Reward,
					Description: fmt.Sprintf("Released slot of cancelled task %q", task.Title),
					Reference:   reference("submission", sub.ID),
				}); err != nil {
					return err
				}
			} else {
				task.ReleaseSlot()
			}
			if err := tx.Model(task).Updates(map[string]interface{}{
				"completed_count": task.CompletedCount,
				"status":          task.Status,
				"budget":          task.Budget,
			}).Error; err != nil {
				return errors.Wrap(err, "update task")
			}
		}

		return tx.Model(&sub).Updates(map[string]interface{}{
			"status":           sub.Status,
			"rejection_reason": sub.RejectionReason,
			"reviewed_by":      sub.ReviewedBy,
			"reviewed_at":      sub.ReviewedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindSubmissionByID(sub.ID)
}

func (s *submissionRepo) FindSubmissionByID(submissionID uint) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	if err := s.DB.Preload("Task").First(&sub, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *submissionRepo) ListSubmissions(filter models.SubmissionFilter) ([]models.TaskSubmission, int64, error) {
	var (
		subs  []models.TaskSubmission
		total int64
	)
	q := s.DB.Model(&models.TaskSubmission{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TaskID != 0 {
		q = q.Where("task_id = ?", filter.TaskID)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count submissions")
	}
	p := filter.Pagination.Normalize()
	err := q.Preload("Task").Preload("User").
		Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list submissions")
	}
	return subs, total, nil
}

func (s *submissionRepo) SubmissionStatusesForUser(userID uint, taskIDs []uint) (map[uint]string, error) {
	statuses := make(map[uint]string, len(taskIDs))
	if len(taskIDs) == 0 {
		return statuses, nil
	}
	var rows []models.TaskSubmission
	err := s.DB.Select("task_id", "status").
		Where("user_id = ? AND task_id IN ?", userID, taskIDs).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "submission statuses")
	}
	for _, r := range rows {
		statuses[r.TaskID] = r.Status
	}
	return statuses, nil
}
