package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

const (
	AccessTokenValidity  = time.Hour * 24
	RefreshTokenValidity = time.Hour * 24 * 30
	ResetTokenValidity   = time.Hour

	tokenTypeAccess  = "access_token"
	tokenTypeRefresh = "refresh_token"
	tokenTypeReset   = "password_reset_token"
	tokenTypeState   = "oauth_state"

	StateTokenValidity = 10 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateTokenPair returns a signed access and refresh token for the user.
func GenerateTokenPair(email, secret string, admin bool, id uint, role string) (string, string, error) {
	now := time.Now()
	accessClaims := jwt.MapClaims{
		"email": email,
		"id":    id,
		"admin": admin,
		"role":  role,
		"type":  tokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   now.Add(AccessTokenValidity).Unix(),
	}
	accessToken, err := sign(accessClaims, secret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"email": email,
		"id":    id,
		"type":  tokenTypeRefresh,
		"iat":   now.Unix(),
		"exp":   now.Add(RefreshTokenValidity).Unix(),
	}
	refreshToken, err := sign(refreshClaims, secret)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GeneratePasswordResetToken returns a short-lived token carrying the user id. It is
// bound to the current password hash, so it stops working once the password changes.
func GeneratePasswordResetToken(userID uint, hashedPassword, secret string) (string, error) {
	return sign(jwt.MapClaims{
		"id":   userID,
		"pwd":  passwordFingerprint(hashedPassword, secret),
		"type": tokenTypeReset,
		"exp":  time.Now().Add(ResetTokenValidity).Unix(),
	}, secret)
}

func passwordFingerprint(hashedPassword, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(hashedPassword))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// GenerateStateToken returns a signed OAuth state so callbacks need no server-side store.
func GenerateStateToken(nonce, secret string) (string, error) {
	return sign(jwt.MapClaims{
		"state": nonce,
		"type":  tokenTypeState,
		"exp":   time.Now().Add(StateTokenValidity).Unix(),
	}, secret)
}

func ValidateStateToken(tokenString, secret string) error {
	claims, err := claimsOf(tokenString, secret)
	if err != nil {
		return err
	}
	if t, _ := claims["type"].(string); t != tokenTypeState {
		return ErrInvalidToken
	}
	return nil
}

func sign(claims jwt.MapClaims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is missing")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses token and checks its signature and expiry.
func ValidateToken(token *string, secret string) (*jwt.Token, error) {
	tk, err := jwt.Parse(*token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !tk.Valid {
		return nil, ErrInvalidToken
	}
	return tk, nil
}

// ValidateAndGetClaims validates an access token and returns its claims.
func ValidateAndGetClaims(tokenString, secret string) (jwt.MapClaims, error) {
	claims, err := claimsOf(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if t, _ := claims["type"].(string); t != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken returns the user id carried by a refresh token.
func ValidateRefreshToken(tokenString, secret string) (uint, error) {
	claims, err := claimsOf(tokenString, secret)
	if err != nil {
		return 0, err
	}
	if t, _ := claims["type"].(string); t != tokenTypeRefresh {
		return 0, ErrInvalidToken
	}
	return UserIDFromClaims(claims)
}

// ValidatePasswordResetToken returns the user id carried by a reset token.
// passwordOf looks up the user's current password hash.
func ValidatePasswordResetToken(tokenString, secret string, passwordOf func(userID uint) (string, error)) (uint, error) {
	claims, err := claimsOf(tokenString, secret)
	if err != nil {
		return 0, err
	}
	if t, _ := claims["type"].(string); t != tokenTypeReset {
		return 0, ErrInvalidToken
	}
	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return 0, err
	}
	hashed, err := passwordOf(userID)
	if err != nil {
		return 0, err
	}
	fingerprint, _ := claims["pwd"].(string)
	if !hmac.Equal([]byte(fingerprint), []byte(passwordFingerprint(hashed, secret))) {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func claimsOf(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := ValidateToken(&tokenString, secret)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserIDFromClaims reads the numeric "id" claim.
func UserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	switch v := claims["id"].(type) {
	case float64:
		return uint(v), nil
	default:
		return 0, ErrInvalidToken
	}
}
