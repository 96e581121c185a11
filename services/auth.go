package services

import (
	"errors"
	"strings"
	"time"

	"chore-quest-system/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService turns email/password credentials into signed bearer tokens
// and resolves tokens back to a principal account id.
type AuthService struct {
	DB       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{DB: db, secret: []byte(secret), tokenTTL: tokenTTL}
}

// IssueToken verifies the credential pair and returns the account plus a
// signed token carrying its id. Bad email and bad password are
// indistinguishable to the caller.
func (s *AuthService) IssueToken(email, password string) (*models.Account, string, error) {
	var account models.Account
	err := s.DB.First(&account, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrUnauthenticated
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   account.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", err
	}
	return &account, token, nil
}

// VerifyToken returns the principal account id carried by a bearer token,
// or ErrUnauthenticated for anything expired, malformed or forged.
func (s *AuthService) VerifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthenticated
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}
