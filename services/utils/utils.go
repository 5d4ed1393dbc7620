package utils

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	ReferralCodeLength = 8
	referralAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralAttempts   = 10
)

var ErrReferralCodeExhausted = errors.New("could not generate a unique referral code")

// HashPassword hashes the provided password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomCode returns n characters drawn from an alphabet without look-alike letters.
func RandomCode(n int) (string, error) {
	max := big.NewInt(int64(len(referralAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = referralAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateReferralCode draws codes until taken reports one as free.
func GenerateReferralCode(taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < referralAttempts; i++ {
		code, err := RandomCode(ReferralCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrReferralCodeExhausted
}
