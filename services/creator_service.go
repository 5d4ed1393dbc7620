package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
)

var ErrScreenshotRequired = apiError.New("a payment screenshot is required", http.StatusBadRequest)

type CreatorService interface {
	Apply(user *models.User) (*models.User, error)
	RequestCoins(ctx context.Context, user *models.User, form *models.CoinRequestForm, screenshot *multipart.FileHeader) (*models.CreatorCoinRequest, error)
	ListMyCoinRequests(userID uint, filter models.CoinRequestFilter) (*models.PagedResult, error)
	CreateTask(creator *models.User, req *models.CreatorTaskRequest) (*models.Task, error)
	ListMyTasks(creatorID uint, filter models.TaskFilter) (*models.PagedResult, error)
	SetTaskActive(creatorID, taskID uint, active bool) (*models.Task, error)
	CancelTask(creatorID, taskID uint) (*models.Task, int64, error)
	GetWallet(creatorID uint) (*models.CreatorWallet, error)
	ListWalletTransactions(creatorID uint, filter models.TransactionFilter) (*models.PagedResult, error)

	ListApplications(filter models.UserFilter) (*models.PagedResult, error)
	ReviewApplication(adminID, userID uint, approve bool) (*models.User, error)
	ListCoinRequests(filter models.CoinRequestFilter) (*models.PagedResult, error)
	ProcessCoinRequest(adminID, requestID uint, approve bool, reason string) (*models.CreatorCoinRequest, error)
}

type creatorService struct {
	Config      *config.Config
	creatorRepo db.CreatorRepository
	taskRepo    db.TaskRepository
	walletRepo  db.WalletRepository
	authRepo    db.AuthRepository
	media       MediaService
	notifier    NotificationService
}

func NewCreatorService(creatorRepo db.CreatorRepository, taskRepo db.TaskRepository, walletRepo db.WalletRepository,
	authRepo db.AuthRepository, media MediaService, notifier NotificationService, conf *config.Config) CreatorService {
	return &creatorService{
		Config:      conf,
		creatorRepo: creatorRepo,
		taskRepo:    taskRepo,
		walletRepo:  walletRepo,
		authRepo:    authRepo,
		media:       media,
		notifier:    notifier,
	}
}

func (c *creatorService) Apply(user *models.User) (*models.User, error) {
	switch user.CreatorStatus {
	case models.CreatorStatusApproved:
		return nil, apiError.New("you are already a creator", http.StatusConflict)
	case models.CreatorStatusPending:
		return nil, apiError.New("your application is under review", http.StatusConflict)
	}
	if err := c.creatorRepo.ApplyForCreator(user.ID); err != nil {
		return nil, err
	}
	logger.Info("creator application submitted", "user_id", user.ID)
	return c.authRepo.FindUserByID(user.ID)
}

// RequestCoins records a creator's payment for creator coins; an admin credits them later.
func (c *creatorService) RequestCoins(ctx context.Context, user *models.User, form *models.CoinRequestForm, screenshot *multipart.FileHeader) (*models.CreatorCoinRequest, error) {
	if !user.IsCreator() {
		return nil, apiError.ErrNotCreator
	}
	if screenshot == nil {
		return nil, ErrScreenshotRequired
	}
	upload, err := c.media.UploadFile(ctx, screenshot, FolderCoinOrders)
	if err != nil {
		return nil, err
	}

	req := &models.CreatorCoinRequest{
		UserID:               user.ID,
		Coins:                form.Coins,
		Amount:               models.CoinsToRupees(form.Coins, c.Config.CoinsPerRupee),
		PaymentScreenshotURL: upload.URL,
		TransactionRef:       form.TransactionRef,
	}
	if err := c.creatorRepo.CreateCoinRequest(req); err != nil {
		return nil, err
	}
	logger.Info("creator coin request", "user_id", user.ID, "request_id", req.ID, "coins", req.Coins)
	return req, nil
}

func (c *creatorService) ListMyCoinRequests(userID uint, filter models.CoinRequestFilter) (*models.PagedResult, error) {
	filter.UserID = userID
	return c.ListCoinRequests(filter)
}

// CreateTask funds a new task from the creator wallet. It stays pending until an admin approves it.
func (c *creatorService) CreateTask(creator *models.User, req *models.CreatorTaskRequest) (*models.Task, error) {
	if !creator.IsCreator() {
		return nil, apiError.ErrNotCreator
	}
	if req.MaxCompletions <= 0 || req.Reward <= 0 {
		return nil, apiError.New("reward and max completions must be positive", http.StatusBadRequest)
	}
	budget, err := models.MulCoins(req.Reward, req.MaxCompletions)
	if err != nil {
		return nil, db.ErrInvalidBudget
	}
	if creator.CreatorCoins < budget {
		return nil, apiError.New(fmt.Sprintf("this task needs %d creator coins, you have %d", budget, creator.CreatorCoins),
			apiError.ErrInsufficientCoins.Status)
	}

	task := &models.Task{CreatedBy: creator.ID}
	req.TaskRequest.MaxCompletions = req.MaxCompletions
	taskFromRequest(task, &req.TaskRequest)
	task, err = c.taskRepo.CreateCreatorTask(task)
	if err != nil {
		return nil, err
	}
	logger.Info("creator task created", "user_id", creator.ID, "task_id", task.ID, "budget", task.Budget)
	return task, nil
}

func (c *creatorService) ListMyTasks(creatorID uint, filter models.TaskFilter) (*models.PagedResult, error) {
	filter.CreatedBy = creatorID
	isCreator := true
	filter.Creator = &isCreator
	tasks, total, err := c.taskRepo.ListTasks(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(tasks, total, filter.Pagination), nil
}

func (c *creatorService) SetTaskActive(creatorID, taskID uint, active bool) (*models.Task, error) {
	if active {
		return c.taskRepo.SetTaskStatus(taskID, creatorID, []string{models.TaskStatusPaused}, models.TaskStatusActive)
	}
	return c.taskRepo.SetTaskStatus(taskID, creatorID, []string{models.TaskStatusActive}, models.TaskStatusPaused)
}

func (c *creatorService) CancelTask(creatorID, taskID uint) (*models.Task, int64, error) {
	task, refund, err := c.taskRepo.CancelCreatorTask(taskID, creatorID)
	if err != nil {
		return nil, 0, err
	}
	logger.Info("creator task cancelled", "user_id", creatorID, "task_id", task.ID, "refund", refund)
	return task, refund, nil
}

func (c *creatorService) GetWallet(creatorID uint) (*models.CreatorWallet, error) {
	user, err := c.authRepo.FindUserByID(creatorID)
	if err != nil {
		return nil, err
	}
	isCreator := true
	_, active, err := c.taskRepo.ListTasks(models.TaskFilter{
		Pagination: models.Pagination{Page: 1, Limit: 1},
		Status:     models.TaskStatusActive,
		CreatedBy:  creatorID,
		Creator:    &isCreator,
	})
	if err != nil {
		return nil, err
	}
	return &models.CreatorWallet{
		CreatorCoins: user.CreatorCoins,
		Value:        models.CoinsToRupees(user.CreatorCoins, c.Config.CoinsPerRupee),
		ActiveTasks:  active,
	}, nil
}

func (c *creatorService) ListWalletTransactions(creatorID uint, filter models.TransactionFilter) (*models.PagedResult, error) {
	filter.Wallet = models.WalletCreator
	txs, total, err := c.walletRepo.ListTransactions(creatorID, filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(txs, total, filter.Pagination), nil
}

func (c *creatorService) ListApplications(filter models.UserFilter) (*models.PagedResult, error) {
	users, total, err := c.creatorRepo.ListCreatorApplications(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(users, total, filter.Pagination), nil
}

func (c *creatorService) ReviewApplication(adminID, userID uint, approve bool) (*models.User, error) {
	user, err := c.creatorRepo.ReviewCreatorApplication(userID, approve)
	if err != nil {
		return nil, err
	}
	logger.Info("creator application reviewed", "admin_id", adminID, "user_id", userID, "status", user.CreatorStatus)
	if approve {
		c.notifier.Notify(user, models.NotifyCreator, "You are now a creator", "Buy creator coins and publish your first task.")
	} else {
		c.notifier.Notify(user, models.NotifyCreator, "Creator application rejected", "Your creator application was not approved. You can apply again.")
	}
	return user, nil
}

func (c *creatorService) ListCoinRequests(filter models.CoinRequestFilter) (*models.PagedResult, error) {
	list, total, err := c.creatorRepo.ListCoinRequests(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(list, total, filter.Pagination), nil
}

func (c *creatorService) ProcessCoinRequest(adminID, requestID uint, approve bool, reason string) (*models.CreatorCoinRequest, error) {
	if !approve && reason == "" {
		return nil, apiError.New("a rejection reason is required", http.StatusBadRequest)
	}
	req, err := c.creatorRepo.ProcessCoinRequest(requestID, adminID, approve, reason)
	if err != nil {
		return nil, err
	}
	logger.Info("coin request processed", "admin_id", adminID, "request_id", req.ID, "status", req.Status)

	if user, err := c.authRepo.FindUserByID(req.UserID); err == nil {
		if approve {
			c.notifier.Notify(user, models.NotifyCreator, "Creator coins added", fmt.Sprintf("%d coins were added to your creator wallet.", req.Coins))
		} else {
			c.notifier.Notify(user, models.NotifyCreator, "Coin request rejected", fmt.Sprintf("Your request for %d creator coins was rejected: %s", req.Coins, reason))
		}
	}
	return req, nil
}
