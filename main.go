package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/mailingservices"
	"github.com/techagentng/earnly/server"
	"github.com/techagentng/earnly/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(conf.Env)
	defer logger.Sync()

	gormDB := db.GetDB(conf)
	if err := db.PromoteAdmins(gormDB.DB, conf.AdminEmails); err != nil {
		logger.Fatal("error promoting admins", err)
	}

	var mail mailingservices.Mailer
	if conf.MailgunApiKey != "" && conf.MgDomain != "" {
		mailgunClient := &mailingservices.Mailgun{}
		mailgunClient.Init(conf)
		mail = mailgunClient
	} else {
		logger.Warn("mailgun is not configured, emails are disabled")
	}

	var (
		storage    services.Storage
		localMedia *services.MemoryStorage
	)
	if conf.AWSBucket != "" {
		s3Storage, err := services.NewS3Storage(conf)
		if err != nil {
			logger.Fatal("error creating s3 client", err)
		}
		storage = s3Storage
	} else {
		logger.Warn("aws bucket is not configured, uploads are kept in memory")
		localMedia = services.NewMemoryStorage(strings.TrimRight(conf.BaseUrl, "/") + "/media")
		storage = localMedia
	}

	var pusher services.Pusher
	if fcm, err := services.NewFCMPusher(context.Background(), conf.FirebaseCredentials); err != nil {
		logger.Warn("push notifications disabled", "error", err)
	} else {
		pusher = fcm
	}

	hub := server.NewHub()

	authRepo := db.NewAuthRepo(gormDB)
	taskRepo := db.NewTaskRepo(gormDB)
	submissionRepo := db.NewSubmissionRepo(gormDB)
	walletRepo := db.NewWalletRepo(gormDB)
	withdrawalRepo := db.NewWithdrawalRepo(gormDB)
	settingsRepo := db.NewSettingsRepo(gormDB)
	postRepo := db.NewPostRepo(gormDB)
	creatorRepo := db.NewCreatorRepo(gormDB)
	adminRepo := db.NewAdminRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	mediaService := services.NewMediaService(storage, conf)
	notificationService := services.NewNotificationService(notificationRepo, pusher, hub, mail, conf)
	authService := services.NewAuthService(authRepo, mail, conf)
	taskService := services.NewTaskService(taskRepo, submissionRepo, authRepo, mediaService, notificationService, conf)
	walletService := services.NewWalletService(walletRepo, withdrawalRepo, settingsRepo, authRepo, mediaService, notificationService, conf)
	creatorService := services.NewCreatorService(creatorRepo, taskRepo, walletRepo, authRepo, mediaService, notificationService, conf)
	postService := services.NewPostService(postRepo, mediaService, conf)
	adminService := services.NewAdminService(adminRepo, authRepo, notificationService, conf)

	if conf.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &server.Server{
		Config:              conf,
		DB:                  gormDB,
		AuthRepository:      authRepo,
		AuthService:         authService,
		MediaService:        mediaService,
		TaskService:         taskService,
		PostService:         postService,
		WalletService:       walletService,
		CreatorService:      creatorService,
		AdminService:        adminService,
		NotificationService: notificationService,
		GoogleOAuth:         services.NewGoogleOAuth(conf),
		Hub:                 hub,
		LocalMedia:          localMedia,
	}
	s.Start()
}
