package service

import (
	"errors"
	"testing"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/constants"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) *UserAuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate user failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "unit-test-secret"
	cfg.JWT.Issuer = "holdcart-test"
	cfg.JWT.ExpireHours = 1
	return NewUserAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegisterDefaultsToCustomerRole(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	user, err := svc.Register("Alice", "alice@example.com", "password123", "superuser")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != constants.UserRoleCustomer {
		t.Fatalf("role want customer got %s", user.Role)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	admin, err := svc.Register("Root", "root@example.com", "password123", constants.UserRoleAdmin)
	if err != nil {
		t.Fatalf("register admin failed: %v", err)
	}
	if admin.Role != constants.UserRoleAdmin {
		t.Fatalf("role want admin got %s", admin.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	if _, err := svc.Register("", "blank-name@example.com", "password123", ""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("want ErrNameRequired got %v", err)
	}
	if _, err := svc.Register("Bob", "not-an-email", "password123", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
	if _, err := svc.Register("Bob", "bob@example.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}

	if _, err := svc.Register("Bob", "bob@example.com", "password123", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register("Bobby", "bob@example.com", "password123", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken got %v", err)
	}
}

func TestLoginReturnsParseableJWT(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	registered, err := svc.Register("Carol", "carol@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, expiresAt, err := svc.Login("carol@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login user id want %d got %d", registered.ID, user.ID)
	}
	if token == "" || !expiresAt.After(user.CreatedAt) {
		t.Fatalf("login should return token with future expiry")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != registered.ID || claims.Email != "carol@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	if _, err := svc.Register("Dave", "dave@example.com", "password123", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := svc.Login("dave@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("wrong password want ErrInvalidCredential got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("unknown email want ErrInvalidCredential got %v", err)
	}
	if _, _, _, err := svc.Login("not-an-email", "password123"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("bad email want ErrInvalidCredential got %v", err)
	}
}
