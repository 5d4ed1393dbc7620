package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/mailingservices"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/services/jwt"
	"github.com/techagentng/earnly/services/utils"
)

var ErrInvalidReferralCode = apiError.New("invalid referral code", http.StatusBadRequest)

// AuthService interface
type AuthService interface {
	SignupUser(request *models.SignupRequest, thumbnailURL string) (*models.User, *apiError.Error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	RefreshToken(refreshToken string) (*models.LoginResponse, *apiError.Error)
	Logout(accessToken string) error
	GoogleLoginUser(googleUser *models.GoogleUser) (*models.LoginResponse, *apiError.Error)
	SendEmailForPasswordReset(request *models.ForgotPassword) *apiError.Error
	ResetPassword(request *models.ResetPassword, token string) *apiError.Error
	GetUserProfile(userID uint) (*models.User, error)
	EditUserProfile(userID uint, userDetails *models.EditProfileRequest) (*models.User, error)
	UpdateUserImage(userID uint, imageURL string) error
	UpdateFCMToken(userID uint, token string) error
}

// authService struct
type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     mailingservices.Mailer
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, mail mailingservices.Mailer, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
	}
}

func (a *authService) SignupUser(request *models.SignupRequest, thumbnailURL string) (*models.User, *apiError.Error) {
	if err := models.ValidatePassword(request.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	request.Email = strings.ToLower(request.Email)
	if err := a.authRepo.IsEmailExist(request.Email); err != nil {
		logger.Info("signup rejected", "email", request.Email, "error", err)
		return nil, apiError.GetUniqueContraintError(err)
	}
	if err := a.authRepo.IsPhoneExist(request.Telephone); err != nil {
		logger.Info("signup rejected", "telephone", request.Telephone, "error", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	bonus := db.SignupBonus{
		SignupCoins:   a.Config.SignupBonusCoins,
		ReferralCoins: a.Config.ReferralBonusCoins,
	}
	if request.ReferralCode != "" {
		referrer, err := a.authRepo.FindUserByReferralCode(request.ReferralCode)
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				return nil, ErrInvalidReferralCode
			}
			logger.Error("referral lookup failed", "code", request.ReferralCode, "error", err)
			return nil, apiError.ErrInternalServerError
		}
		bonus.ReferrerID = &referrer.ID
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		logger.Error("SignupUser error hashing password", "error", err)
		return nil, apiError.ErrInternalServerError
	}
	code, err := utils.GenerateReferralCode(a.authRepo.IsReferralCodeTaken)
	if err != nil {
		logger.Error("SignupUser error generating referral code", "error", err)
		return nil, apiError.ErrInternalServerError
	}

	user := &models.User{
		Fullname:       request.Fullname,
		Username:       request.Username,
		Telephone:      request.Telephone,
		Email:          request.Email,
		HashedPassword: hashedPassword,
		ThumbNailURL:   thumbnailURL,
		ReferralCode:   code,
	}
	created, err := a.authRepo.CreateUser(user, bonus)
	if err != nil {
		logger.Error("SignupUser error creating user", "email", user.Email, "error", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	a.sendWelcome(created)
	return created, nil
}

func (a *authService) sendWelcome(user *models.User) {
	if a.mail == nil {
		return
	}
	if _, err := a.mail.SendWelcomeMessage(user.Email, user.Fullname); err != nil {
		logger.Warn("welcome mail not sent", "user_id", user.ID, "error", err)
	}
}

// LoginUser logs in a user and returns the login response
func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := a.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apiError.ErrInvalidPassword
		}
		logger.Error("error finding user by email", "email", loginRequest.Email, "error", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	if foundUser.HashedPassword == "" {
		return nil, apiError.New("this account uses Google sign-in", http.StatusUnprocessableEntity)
	}
	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		logger.Info("invalid password", "email", foundUser.Email)
		return nil, apiError.ErrInvalidPassword
	}
	return a.issueTokens(foundUser)
}

func (a *authService) RefreshToken(refreshToken string) (*models.LoginResponse, *apiError.Error) {
	userID, err := jwt.ValidateRefreshToken(refreshToken, a.Config.JWTSecret)
	if err != nil {
		return nil, apiError.ErrUnauthorized
	}
	if a.authRepo.IsTokenInBlacklist(refreshToken) {
		return nil, apiError.ErrUnauthorized
	}
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, apiError.ErrUnauthorized
	}
	return a.issueTokens(user)
}

func (a *authService) issueTokens(user *models.User) (*models.LoginResponse, *apiError.Error) {
	if user.IsBlocked {
		return nil, apiError.ErrBlockedUser
	}
	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.Email, a.Config.JWTSecret, user.IsAdmin(), user.ID, user.Role.Name)
	if err != nil {
		logger.Error("error generating token pair", "user_id", user.ID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	return &models.LoginResponse{
		UserResponse: models.NewUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authService) Logout(accessToken string) error {
	return a.authRepo.AddToBlackList(&models.Blacklist{Token: accessToken})
}

// GoogleLoginUser signs in a Google account, creating the user on first sight.
func (a *authService) GoogleLoginUser(googleUser *models.GoogleUser) (*models.LoginResponse, *apiError.Error) {
	email := strings.ToLower(strings.TrimSpace(googleUser.Email))
	if email == "" {
		return nil, apiError.New("google account has no email", http.StatusBadRequest)
	}

	foundUser, err := a.authRepo.FindUserByEmail(email)
	if err == nil {
		return a.issueTokens(foundUser)
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		logger.Error("error finding user by email", "email", email, "error", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	code, err := utils.GenerateReferralCode(a.authRepo.IsReferralCodeTaken)
	if err != nil {
		logger.Error("error generating referral code", "error", err)
		return nil, apiError.ErrInternalServerError
	}
	username := strings.Split(email, "@")[0]
	if len(username) < 2 {
		username += "user"
	}
	fullname := googleUser.Name
	if fullname == "" {
		fullname = username
	}

	newUser, err := a.authRepo.CreateUser(&models.User{
		Email:        email,
		Fullname:     fullname,
		Username:     username,
		IsSocial:     true,
		ThumbNailURL: googleUser.Picture,
		ReferralCode: code,
	}, db.SignupBonus{SignupCoins: a.Config.SignupBonusCoins})
	if err != nil {
		logger.Error("error creating google user", "email", email, "error", err)
		return nil, apiError.New("unable to create user", http.StatusInternalServerError)
	}
	a.sendWelcome(newUser)
	return a.issueTokens(newUser)
}

// SendEmailForPasswordReset mails a reset link. Unknown addresses get the same answer.
func (a *authService) SendEmailForPasswordReset(request *models.ForgotPassword) *apiError.Error {
	user, err := a.authRepo.FindUserByEmail(request.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			logger.Info("password reset for unknown email", "email", request.Email)
			return nil
		}
		logger.Error("error finding user by email", "email", request.Email, "error", err)
		return apiError.ErrInternalServerError
	}

	token, err := jwt.GeneratePasswordResetToken(user.ID, user.HashedPassword, a.Config.JWTSecret)
	if err != nil {
		logger.Error("failed to generate reset token", "user_id", user.ID, "error", err)
		return apiError.ErrInternalServerError
	}
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(a.Config.BaseUrl, "/"), token)
	if a.mail == nil {
		return apiError.New("mail service unavailable", http.StatusServiceUnavailable)
	}
	if _, err := a.mail.SendResetPassword(user.Email, link); err != nil {
		return apiError.New("connection to mail service interrupted", http.StatusInternalServerError)
	}
	return nil
}

func (a *authService) ResetPassword(request *models.ResetPassword, token string) *apiError.Error {
	userID, err := jwt.ValidatePasswordResetToken(token, a.Config.JWTSecret, func(id uint) (string, error) {
		user, err := a.authRepo.FindUserByID(id)
		if err != nil {
			return "", err
		}
		return user.HashedPassword, nil
	})
	if err != nil {
		return apiError.New("invalid or expired reset link", http.StatusBadRequest)
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}
	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		return apiError.ErrInternalServerError
	}
	if err := a.authRepo.UpdatePassword(userID, hashed); err != nil {
		logger.Error("failed to update password", "user_id", userID, "error", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	return a.authRepo.FindUserByID(userID)
}

func (a *authService) EditUserProfile(userID uint, userDetails *models.EditProfileRequest) (*models.User, error) {
	if userDetails.Telephone != "" {
		user, err := a.authRepo.FindUserByID(userID)
		if err != nil {
			return nil, err
		}
		if user.Telephone != userDetails.Telephone {
			if err := a.authRepo.IsPhoneExist(userDetails.Telephone); err != nil {
				return nil, apiError.GetUniqueContraintError(err)
			}
		}
	}
	if err := a.authRepo.EditUserProfile(userID, userDetails); err != nil {
		return nil, err
	}
	return a.authRepo.FindUserByID(userID)
}

func (a *authService) UpdateUserImage(userID uint, imageURL string) error {
	return a.authRepo.UpsertUserImage(userID, imageURL)
}

func (a *authService) UpdateFCMToken(userID uint, token string) error {
	return a.authRepo.UpdateFCMToken(userID, token)
}
