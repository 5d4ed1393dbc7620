package server

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (s *Server) setupRouter() *gin.Engine {
	binding.Validator = requestValidator{}

	if os.Getenv("GIN_MODE") == "test" || gin.Mode() == gin.TestMode {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			redactPath(param.Path),
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.Config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.Config.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

// redactPath hides credentials passed in the query string, e.g. /ws?token=...
func redactPath(path string) string {
	i := strings.IndexByte(path, '?')
	if i < 0 {
		return path
	}
	query, err := url.ParseQuery(path[i+1:])
	if err != nil {
		return path[:i] + "?[unparsed]"
	}
	if _, ok := query["token"]; !ok {
		return path
	}
	query.Set("token", "REDACTED")
	return path[:i] + "?" + query.Encode()
}

func (s *Server) defineRoutes(router *gin.Engine) {
	loginLimit := rateLimit(ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: 10}), keyByIP)
	resetLimit := rateLimit(ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Hour, Limit: 3}), keyByEmail)
	withdrawLimit := rateLimit(ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: 3}), keyByUser)

	router.GET("/health", s.handleHealth())
	if s.LocalMedia != nil {
		router.GET("/media/*key", s.handleLocalMedia())
	}

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", loginLimit, s.handleLogin())
	apirouter.POST("/auth/refresh", s.handleRefreshToken())
	apirouter.POST("/auth/password/forgot", resetLimit, s.HandleForgotPassword())
	apirouter.POST("/auth/password/reset/:token", s.ResetPassword())
	apirouter.GET("/auth/google/login", s.HandleGoogleLogin())
	apirouter.GET("/auth/google/callback", s.HandleGoogleCallback())
	apirouter.GET("/settings/withdrawal", s.handleGetWithdrawalSettings())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.POST("/auth/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me", s.handleEditUserProfile())
	authorized.PUT("/me/avatar", s.handleUpdateUserImage())
	authorized.PUT("/me/fcm-token", s.handleUpdateFCMToken())
	authorized.GET("/me/submissions", s.handleListMySubmissions())
	authorized.GET("/ws", s.handleWebSocket())

	authorized.GET("/tasks", s.handleListTasks())
	authorized.GET("/tasks/:id", s.handleGetTask())
	authorized.POST("/tasks/:id/complete", s.handleCompleteTask())

	authorized.GET("/wallet", s.handleGetBalance())
	authorized.GET("/wallet/transactions", s.handleListTransactions())
	authorized.GET("/wallet/withdrawals", s.handleListMyWithdrawals())
	authorized.POST("/wallet/withdrawals", withdrawLimit, s.handleRequestWithdrawal())

	authorized.GET("/posts", s.handleGetFeed())
	authorized.POST("/posts", s.handleCreatePost())
	authorized.GET("/posts/:id", s.handleGetPost())
	authorized.DELETE("/posts/:id", s.handleDeletePost())
	authorized.POST("/posts/:id/like", s.handleLikePost())
	authorized.DELETE("/posts/:id/like", s.handleUnlikePost())
	authorized.GET("/posts/:id/comments", s.handleListComments())
	authorized.POST("/posts/:id/comments", s.handleAddComment())

	authorized.GET("/notifications", s.handleListNotifications())
	authorized.PUT("/notifications", s.handleMarkAllNotificationsRead())
	authorized.PUT("/notifications/:id", s.handleMarkNotificationRead())

	authorized.POST("/creator/apply", s.handleApplyForCreator())
	authorized.GET("/creator/status", s.handleCreatorStatus())
	creator := authorized.Group("/creator")
	creator.Use(RequireCreator())
	creator.GET("/wallet", s.handleCreatorWallet())
	creator.GET("/wallet/transactions", s.handleCreatorTransactions())
	creator.POST("/coin-requests", s.handleRequestCreatorCoins())
	creator.GET("/coin-requests", s.handleListMyCoinRequests())
	creator.POST("/tasks", s.handleCreateCreatorTask())
	creator.GET("/tasks", s.handleListCreatorTasks())
	creator.PUT("/tasks/:id/pause", s.handleSetCreatorTaskActive(false))
	creator.PUT("/tasks/:id/resume", s.handleSetCreatorTaskActive(true))
	creator.DELETE("/tasks/:id", s.handleCancelCreatorTask())

	admin := authorized.Group("/admin")
	admin.Use(RequireAdmin())
	admin.GET("/stats", s.handleAdminStats())
	admin.GET("/users", s.handleAdminListUsers())
	admin.GET("/users/:id", s.handleAdminGetUser())
	admin.PUT("/users/:id/block", s.handleSetUserBlocked(true))
	admin.PUT("/users/:id/unblock", s.handleSetUserBlocked(false))
	admin.POST("/users/:id/coins", s.handleAdjustCoins())

	admin.GET("/tasks", s.handleAdminListTasks())
	admin.POST("/tasks", s.handleAdminCreateTask())
	admin.PUT("/tasks/:id", s.handleAdminUpdateTask())
	admin.DELETE("/tasks/:id", s.handleAdminDeleteTask())
	admin.PUT("/tasks/:id/pause", s.handleAdminSetTaskActive(false))
	admin.PUT("/tasks/:id/activate", s.handleAdminSetTaskActive(true))
	admin.POST("/tasks/:id/approve", s.handleReviewCreatorTask(true))
	admin.POST("/tasks/:id/reject", s.handleReviewCreatorTask(false))

	admin.GET("/submissions", s.handleAdminListSubmissions())
	admin.POST("/submissions/:id/approve", s.handleReviewSubmission(true))
	admin.POST("/submissions/:id/reject", s.handleReviewSubmission(false))

	admin.GET("/withdrawals", s.handleAdminListWithdrawals())
	admin.POST("/withdrawals/:id/approve", s.handleProcessWithdrawal(true))
	admin.POST("/withdrawals/:id/reject", s.handleProcessWithdrawal(false))
	admin.GET("/exports/withdrawals", s.handleExportWithdrawals())
	admin.GET("/settings/withdrawal", s.handleGetWithdrawalSettings())
	admin.PUT("/settings/withdrawal", s.handleUpdateWithdrawalSettings())

	admin.GET("/creator-applications", s.handleListCreatorApplications())
	admin.POST("/creator-applications/:id/approve", s.handleReviewCreatorApplication(true))
	admin.POST("/creator-applications/:id/reject", s.handleReviewCreatorApplication(false))
	admin.GET("/coin-requests", s.handleAdminListCoinRequests())
	admin.POST("/coin-requests/:id/approve", s.handleProcessCoinRequest(true))
	admin.POST("/coin-requests/:id/reject", s.handleProcessCoinRequest(false))
	admin.DELETE("/posts/:id", s.handleDeletePost())
}
