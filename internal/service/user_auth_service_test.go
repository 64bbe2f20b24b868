package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{
		UserJWT: config.JWTConfig{
			SecretKey:             "test-secret-key-for-user-auth-tests-0001",
			ExpireHours:           24,
			RememberMeExpireHours: 168,
		},
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db)), db
}

func TestUserAuthRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, token, expiresAt, err := svc.Register("aysel", "Aysel@Example.com", "demo123456")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "aysel@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Status != constants.UserStatusActive {
		t.Fatalf("expected active status, got %s", user.Status)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("expected valid token")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	logged, _, _, err := svc.Login("aysel@example.com", "demo123456", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("unexpected user: %d", logged.ID)
	}
}

func TestUserAuthRegisterDefaultsUsernameFromEmail(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register("", "rashad@example.com", "demo123456")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "rashad" {
		t.Fatalf("expected username derived from email, got %s", user.Username)
	}
}

func TestUserAuthRegisterValidation(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register("x", "not-an-email", "demo123456"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, _, _, err := svc.Register("x", "x@example.com", "123"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected password too short, got %v", err)
	}
}

func TestUserAuthRegisterDuplicates(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register("nigar", "nigar@example.com", "demo123456"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, _, err := svc.Register("other", "nigar@example.com", "demo123456"); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected email exists, got %v", err)
	}
	if _, _, _, err := svc.Register("nigar", "nigar2@example.com", "demo123456"); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected username exists, got %v", err)
	}
}

func TestUserAuthLoginWrongPassword(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register("samir", "samir@example.com", "demo123456"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, _, err := svc.Login("samir@example.com", "wrong-password", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("unknown@example.com", "demo123456", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestUserAuthLoginDisabledUser(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register("leyla", "leyla@example.com", "demo123456")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	if _, _, _, err := svc.Login("leyla@example.com", "demo123456", false); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}
}

func TestUserAuthParseRejectsForgedToken(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	other := &UserAuthService{
		cfg: &config.Config{UserJWT: config.JWTConfig{SecretKey: "another-secret-key-for-forged-tokens-01"}},
	}

	user := &models.User{ID: 42, Email: "forge@example.com"}
	token, _, err := other.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := svc.ParseUserJWT(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestUserAuthGetUserByID(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, err := svc.GetUserByID(0); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found for zero id, got %v", err)
	}
	if _, err := svc.GetUserByID(12345); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
