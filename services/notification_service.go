package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/mailingservices"
	"github.com/techagentng/earnly/models"
)

const pushTimeout = 5 * time.Second

// Broadcaster streams an event to every open connection of a user.
type Broadcaster interface {
	SendToUser(userID uint, event interface{})
}

type NotificationEvent struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification"`
}

type NotificationService interface {
	Notify(user *models.User, kind, title, message string)
	NotifyWithdrawal(user *models.User, w *models.Withdrawal)
	ListNotifications(userID uint, p models.Pagination) (*models.PagedResult, int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
}

type notificationService struct {
	Config      *config.Config
	repo        db.NotificationRepository
	pusher      Pusher
	broadcaster Broadcaster
	mail        mailingservices.Mailer
}

// NewNotificationService wires the delivery channels; any of pusher, broadcaster
// and mail may be nil.
func NewNotificationService(repo db.NotificationRepository, pusher Pusher, broadcaster Broadcaster, mail mailingservices.Mailer, conf *config.Config) NotificationService {
	return &notificationService{
		Config:      conf,
		repo:        repo,
		pusher:      pusher,
		broadcaster: broadcaster,
		mail:        mail,
	}
}

// Notify stores a notification and fans it out. Delivery failures are logged only.
func (n *notificationService) Notify(user *models.User, kind, title, message string) {
	if user == nil {
		return
	}
	notification := &models.Notification{
		UserID:  user.ID,
		Title:   title,
		Message: message,
		Kind:    kind,
	}
	if err := n.repo.CreateNotification(notification); err != nil {
		logger.Error("failed to save notification", "user_id", user.ID, "kind", kind, "error", err)
		return
	}

	if n.broadcaster != nil {
		n.broadcaster.SendToUser(user.ID, NotificationEvent{Event: "notification", Notification: notification})
	}

	if n.pusher != nil && user.FCMToken != "" {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		data := map[string]string{
			"kind":            kind,
			"notification_id": strconv.FormatUint(uint64(notification.ID), 10),
		}
		if err := n.pusher.Push(ctx, user.FCMToken, title, message, data); err != nil {
			logger.Warn("push notification failed", "user_id", user.ID, "error", err)
		}
	}
}

func (n *notificationService) NotifyWithdrawal(user *models.User, w *models.Withdrawal) {
	if user == nil || w == nil {
		return
	}
	var title, message string
	switch w.Status {
	case models.StatusApproved:
		title = "Withdrawal approved"
		message = fmt.Sprintf("₹%s has been sent to your %s account.", w.Amount.StringFixed(2), w.PaymentMethod)
	case models.StatusRejected:
		title = "Withdrawal rejected"
		message = fmt.Sprintf("Your withdrawal of ₹%s was rejected: %s. %d coins were returned to your wallet.",
			w.Amount.StringFixed(2), w.RejectionReason, w.Coins)
	default:
		return
	}
	n.Notify(user, models.NotifyWithdrawal, title, message)

	if n.mail != nil && user.Email != "" {
		if _, err := n.mail.SendWithdrawalStatus(user.Email, user.Fullname, w.Status, message); err != nil {
			logger.Warn("withdrawal mail failed", "user_id", user.ID, "withdrawal_id", w.ID, "error", err)
		}
	}
}

func (n *notificationService) ListNotifications(userID uint, p models.Pagination) (*models.PagedResult, int64, error) {
	list, total, err := n.repo.ListNotifications(userID, p)
	if err != nil {
		return nil, 0, err
	}
	unread, err := n.repo.CountUnread(userID)
	if err != nil {
		return nil, 0, err
	}
	return models.NewPagedResult(list, total, p), unread, nil
}

func (n *notificationService) MarkRead(userID, notificationID uint) error {
	return n.repo.MarkRead(userID, notificationID)
}

func (n *notificationService) MarkAllRead(userID uint) error {
	return n.repo.MarkAllRead(userID)
}
