package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/model"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error) // returns JWT
	ParseToken(token string) (Principal, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

const sessionTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Type    string `json:"typ"`
	IsAdmin bool   `json:"adm"`
	jwt.RegisteredClaims
}

type authService struct {
	db     *gorm.DB
	secret []byte
}

func NewAuthService(db *gorm.DB, secret string) AuthService {
	return &authService{db: db, secret: []byte(secret)}
}

func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	var u model.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Type:    "session",
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	})
	return t.SignedString(a.secret)
}

func (a *authService) ParseToken(token string) (Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if claims.Type != "session" {
		return Principal{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: uint(id), IsAdmin: claims.IsAdmin}, nil
}

// EnsureAdmin creates the admin account, or resets its password and admin
// flag if it exists.
func (a *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return errx.Validation("email", "admin email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		err := tx.Where("email = ?", email).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.User{Email: email, PasswordHash: string(hash), IsAdmin: true}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&u).Updates(map[string]any{"password_hash": string(hash), "is_admin": true}).Error
	})
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
