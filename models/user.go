package models

import (
	"errors"

	goval "github.com/go-passwd/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	CreatorStatusNone     = "none"
	CreatorStatusPending  = "pending"
	CreatorStatusApproved = "approved"
	CreatorStatusRejected = "rejected"
)

// User represents a user of the application
type User struct {
	Model
	Fullname       string    `json:"fullname"`
	Username       string    `json:"username" gorm:"index"`
	Telephone      string    `json:"telephone" gorm:"default:null"`
	Email          string    `json:"email" gorm:"unique;not null"`
	HashedPassword string    `json:"-"`
	IsSocial       bool      `json:"-"`
	IsBlocked      bool      `json:"is_blocked" gorm:"default:false"`
	ThumbNailURL   string    `json:"thumbnail_url,omitempty"`
	RoleID         uuid.UUID `gorm:"type:uuid" json:"role_id"`
	Role           Role      `gorm:"foreignKey:RoleID" json:"role"`
	Coins          int64     `json:"coins" gorm:"not null;default:0"`
	TotalEarned    int64     `json:"total_earned" gorm:"not null;default:0"`
	TotalWithdrawn int64     `json:"total_withdrawn" gorm:"not null;default:0"`
	ReferralCode   string    `json:"referral_code" gorm:"uniqueIndex;size:16"`
	ReferredBy     *uint     `json:"referred_by,omitempty"`
	CreatorStatus  string    `json:"creator_status" gorm:"not null;default:none"`
	CreatorCoins   int64     `json:"creator_coins" gorm:"not null;default:0"`
	FCMToken       string    `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}

func (u *User) IsCreator() bool {
	return u.CreatorStatus == CreatorStatusApproved
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

// Blacklist holds access tokens revoked by logout.
type Blacklist struct {
	Model
	Token string `json:"token" gorm:"index"`
}

type SignupRequest struct {
	Fullname     string `json:"fullname" form:"fullname" binding:"required,min=2" conform:"trim"`
	Username     string `json:"username" form:"username" binding:"required,min=2" conform:"trim"`
	Telephone    string `json:"telephone" form:"telephone" binding:"required" conform:"num"`
	Email        string `json:"email" form:"email" binding:"required,email" conform:"email"`
	Password     string `json:"password" form:"password" binding:"required"`
	ReferralCode string `json:"referral_code" form:"referral_code" conform:"trim,upper"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" conform:"email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID            uint   `json:"id"`
	Fullname      string `json:"fullname"`
	Username      string `json:"username"`
	Telephone     string `json:"telephone"`
	Email         string `json:"email"`
	RoleName      string `json:"role_name"`
	ThumbNailURL  string `json:"thumbnail_url,omitempty"`
	Coins         int64  `json:"coins"`
	ReferralCode  string `json:"referral_code"`
	CreatorStatus string `json:"creator_status"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Fullname:      u.Fullname,
		Username:      u.Username,
		Telephone:     u.Telephone,
		Email:         u.Email,
		RoleName:      u.Role.Name,
		ThumbNailURL:  u.ThumbNailURL,
		Coins:         u.Coins,
		ReferralCode:  u.ReferralCode,
		CreatorStatus: u.CreatorStatus,
	}
}

type EditProfileRequest struct {
	Fullname  string `json:"fullname" conform:"trim"`
	Username  string `json:"username" conform:"trim"`
	Telephone string `json:"telephone" conform:"num"`
}

type ForgotPassword struct {
	Email string `json:"email" binding:"required,email" conform:"email"`
}

type ResetPassword struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type GoogleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(15, errors.New("password cant be more than 15 characters")))
	return passwordValidator.Validate(password)
}
