package db

import (
	"github.com/pkg/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateNotification(n *models.Notification) error
	ListNotifications(userID uint, p models.Pagination) ([]models.Notification, int64, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (n *notificationRepo) CreateNotification(notification *models.Notification) error {
	return n.DB.Create(notification).Error
}

func (n *notificationRepo) ListNotifications(userID uint, p models.Pagination) ([]models.Notification, int64, error) {
	var (
		list  []models.Notification
		total int64
	)
	q := n.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}
	p = p.Normalize()
	if err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list notifications")
	}
	return list, total, nil
}

func (n *notificationRepo) CountUnread(userID uint) (int64, error) {
	var count int64
	err := n.DB.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

func (n *notificationRepo) MarkRead(userID, notificationID uint) error {
	result := n.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (n *notificationRepo) MarkAllRead(userID uint) error {
	return n.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
