package services

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/services/jwt"
	"github.com/techagentng/earnly/services/utils"
)

type fakeAuthRepo struct {
	db.AuthRepository
	users     map[string]*models.User
	lastBonus db.SignupBonus
	passwords map[uint]string
	blacklist map[string]bool
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	f := &fakeAuthRepo{users: map[string]*models.User{}, passwords: map[uint]string{}, blacklist: map[string]bool{}}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeAuthRepo) IsEmailExist(email string) error {
	if _, ok := f.users[email]; ok {
		return errors.New("email already in use")
	}
	return nil
}

func (f *fakeAuthRepo) IsPhoneExist(string) error { return nil }

func (f *fakeAuthRepo) IsReferralCodeTaken(code string) (bool, error) {
	for _, u := range f.users {
		if u.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuthRepo) FindUserByReferralCode(code string) (*models.User, error) {
	for _, u := range f.users {
		if u.ReferralCode == code {
			return u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (f *fakeAuthRepo) CreateUser(user *models.User, bonus db.SignupBonus) (*models.User, error) {
	user.ID = uint(len(f.users) + 1)
	user.Role = models.Role{Name: models.RoleUser}
	user.Coins = bonus.SignupCoins
	user.ReferredBy = bonus.ReferrerID
	f.lastBonus = bonus
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeAuthRepo) FindUserByEmail(email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, db.ErrUserNotFound
}

func (f *fakeAuthRepo) FindUserByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (f *fakeAuthRepo) UpdatePassword(userID uint, hashed string) error {
	f.passwords[userID] = hashed
	for _, u := range f.users {
		if u.ID == userID {
			u.HashedPassword = hashed
		}
	}
	return nil
}

func (f *fakeAuthRepo) AddToBlackList(b *models.Blacklist) error {
	f.blacklist[b.Token] = true
	return nil
}

func (f *fakeAuthRepo) IsTokenInBlacklist(token string) bool { return f.blacklist[token] }

type recordingMailer struct {
	fakeMailer
	welcomes []string
	resets   []string
}

func (r *recordingMailer) SendWelcomeMessage(to, _ string) (string, error) {
	r.welcomes = append(r.welcomes, to)
	return "id", nil
}

func (r *recordingMailer) SendResetPassword(to, link string) (string, error) {
	r.resets = append(r.resets, link)
	return "id", nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "secret",
		BaseUrl:            "https://earnly.app",
		SignupBonusCoins:   100,
		ReferralBonusCoins: 500,
	}
}

func existingUser(t *testing.T, id uint, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return &models.User{
		Model:          models.Model{ID: id},
		Email:          email,
		Fullname:       "Existing",
		HashedPassword: hash,
		ReferralCode:   "REF12345",
		Role:           models.Role{Name: models.RoleUser},
	}
}

func TestSignupUser(t *testing.T) {
	tests := []struct {
		name         string
		req          models.SignupRequest
		wantErr      *apiError.Error
		wantReferrer bool
	}{
		{
			name: "plain signup",
			req:  models.SignupRequest{Fullname: "Asha", Username: "asha", Email: "asha@example.com", Password: "secret12"},
		},
		{
			name:         "with referral code",
			req:          models.SignupRequest{Fullname: "Asha", Username: "asha", Email: "asha@example.com", Password: "secret12", ReferralCode: "REF12345"},
			wantReferrer: true,
		},
		{
			name:    "unknown referral code",
			req:     models.SignupRequest{Fullname: "Asha", Username: "asha", Email: "asha@example.com", Password: "secret12", ReferralCode: "NOPE0000"},
			wantErr: ErrInvalidReferralCode,
		},
		{
			name:    "short password",
			req:     models.SignupRequest{Fullname: "Asha", Username: "asha", Email: "asha@example.com", Password: "123"},
			wantErr: apiError.New("password cant be less than 6 characters", 400),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAuthRepo(existingUser(t, 1, "ref@example.com", "secret12"))
			mail := &recordingMailer{}
			svc := NewAuthService(repo, mail, testAuthConfig())

			user, err := svc.SignupUser(&tt.req, "")
			if tt.wantErr != nil {
				if err == nil || err.Message != tt.wantErr.Message {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignupUser() error = %v", err)
			}
			if len(user.ReferralCode) != utils.ReferralCodeLength {
				t.Errorf("ReferralCode = %q", user.ReferralCode)
			}
			if user.HashedPassword == "" || user.HashedPassword == tt.req.Password {
				t.Error("password was not hashed")
			}
			if repo.lastBonus.SignupCoins != 100 || repo.lastBonus.ReferralCoins != 500 {
				t.Errorf("bonus = %+v", repo.lastBonus)
			}
			if (repo.lastBonus.ReferrerID != nil) != tt.wantReferrer {
				t.Errorf("ReferrerID = %v, wantReferrer %v", repo.lastBonus.ReferrerID, tt.wantReferrer)
			}
			if len(mail.welcomes) != 1 {
				t.Errorf("welcome mails = %d, want 1", len(mail.welcomes))
			}
		})
	}
}

func TestSignupUserDuplicateEmail(t *testing.T) {
	repo := newFakeAuthRepo(existingUser(t, 1, "asha@example.com", "secret12"))
	svc := NewAuthService(repo, nil, testAuthConfig())

	_, err := svc.SignupUser(&models.SignupRequest{Email: "asha@example.com", Password: "secret12"}, "")
	if err == nil || err.Status != 409 {
		t.Fatalf("err = %v, want 409", err)
	}
}

func TestLoginUser(t *testing.T) {
	blocked := existingUser(t, 2, "blocked@example.com", "secret12")
	blocked.IsBlocked = true
	repo := newFakeAuthRepo(existingUser(t, 1, "asha@example.com", "secret12"), blocked)
	svc := NewAuthService(repo, nil, testAuthConfig())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  *apiError.Error
	}{
		{"valid", "asha@example.com", "secret12", nil},
		{"wrong password", "asha@example.com", "nope1234", apiError.ErrInvalidPassword},
		{"unknown email", "ghost@example.com", "secret12", apiError.ErrInvalidPassword},
		{"blocked", "blocked@example.com", "secret12", apiError.ErrBlockedUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.LoginUser(&models.LoginRequest{Email: tt.email, Password: tt.password})
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			claims, vErr := jwt.ValidateAndGetClaims(res.AccessToken, "secret")
			if vErr != nil {
				t.Fatalf("access token invalid: %v", vErr)
			}
			if id, _ := jwt.UserIDFromClaims(claims); id != 1 {
				t.Errorf("token id = %d, want 1", id)
			}
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	repo := newFakeAuthRepo(existingUser(t, 1, "asha@example.com", "secret12"))
	svc := NewAuthService(repo, nil, testAuthConfig())

	login, err := svc.LoginUser(&models.LoginRequest{Email: "asha@example.com", Password: "secret12"})
	if err != nil {
		t.Fatalf("LoginUser() error = %v", err)
	}
	if _, err := svc.RefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if _, err := svc.RefreshToken(login.AccessToken); err != apiError.ErrUnauthorized {
		t.Errorf("access token used as refresh: err = %v", err)
	}
	if err := svc.Logout(login.AccessToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !repo.IsTokenInBlacklist(login.AccessToken) {
		t.Error("token not blacklisted after logout")
	}
}

func TestPasswordReset(t *testing.T) {
	repo := newFakeAuthRepo(existingUser(t, 7, "asha@example.com", "secret12"))
	mail := &recordingMailer{}
	svc := NewAuthService(repo, mail, testAuthConfig())

	if err := svc.SendEmailForPasswordReset(&models.ForgotPassword{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("unknown email: err = %v", err)
	}
	if len(mail.resets) != 0 {
		t.Fatalf("mail sent for unknown email")
	}
	if err := svc.SendEmailForPasswordReset(&models.ForgotPassword{Email: "asha@example.com"}); err != nil {
		t.Fatalf("SendEmailForPasswordReset() error = %v", err)
	}
	if len(mail.resets) != 1 {
		t.Fatalf("reset mails = %d, want 1", len(mail.resets))
	}

	token := mail.resets[0][strings.LastIndex(mail.resets[0], "/")+1:]
	if err := svc.ResetPassword(&models.ResetPassword{Password: "newpass1", ConfirmPassword: "newpass1"}, token); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if !utils.CheckPasswordHash("newpass1", repo.passwords[7]) {
		t.Error("stored hash does not match the new password")
	}

	forged, _ := jwt.GeneratePasswordResetToken(7, "", "secret")
	tests := []struct {
		name  string
		token string
	}{
		{"reused link", token},
		{"bogus", "bogus"},
		{"not bound to the current password", forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ResetPassword(&models.ResetPassword{Password: "other123", ConfirmPassword: "other123"}, tt.token)
			if err == nil || err.Status != http.StatusBadRequest {
				t.Fatalf("ResetPassword() err = %v, want 400", err)
			}
			if !utils.CheckPasswordHash("newpass1", repo.passwords[7]) {
				t.Error("password changed by a rejected link")
			}
		})
	}
}

func TestGoogleLoginUser(t *testing.T) {
	repo := newFakeAuthRepo(existingUser(t, 1, "asha@example.com", "secret12"))
	svc := NewAuthService(repo, nil, testAuthConfig())

	res, err := svc.GoogleLoginUser(&models.GoogleUser{Email: "Asha@Example.com"})
	if err != nil {
		t.Fatalf("existing: err = %v", err)
	}
	if res.ID != 1 {
		t.Errorf("existing user id = %d, want 1", res.ID)
	}

	res, err = svc.GoogleLoginUser(&models.GoogleUser{Email: "new@example.com", Name: "New Person"})
	if err != nil {
		t.Fatalf("new: err = %v", err)
	}
	created := repo.users["new@example.com"]
	if created == nil || !created.IsSocial || created.Username != "new" {
		t.Fatalf("created user = %+v", created)
	}
	if res.Coins != 100 {
		t.Errorf("signup bonus coins = %d, want 100", res.Coins)
	}
}
