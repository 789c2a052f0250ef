package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/submisoon/assessment-service/internal/models"
)

func newAuthEnv(t *testing.T) AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	data := newFakeData()
	data.users[100] = &models.User{
		ID:           100,
		Name:         "Andi",
		Email:        "andi@example.edu",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}

	return NewAuthService(newFakeRepository(data), "jwt-secret", time.Hour, SystemClock(), testLogger())
}

func TestLogin(t *testing.T) {
	service := newAuthEnv(t)
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		result, err := service.Login(ctx, &models.LoginRequest{Email: "andi@example.edu", Password: "s3cret"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.AccessToken == "" {
			t.Error("access token empty")
		}
		if result.User.Name != "Andi" || result.User.Role != "student" {
			t.Errorf("user info = %+v", result.User)
		}

		userID, role, err := service.VerifyToken(result.AccessToken)
		if err != nil {
			t.Fatalf("VerifyToken failed: %v", err)
		}
		if userID != 100 || role != "student" {
			t.Errorf("claims = %d/%s", userID, role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &models.LoginRequest{Email: "andi@example.edu", Password: "nope"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(ctx, &models.LoginRequest{Email: "ghost@example.edu", Password: "s3cret"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestVerifyToken_Rejections(t *testing.T) {
	service := newAuthEnv(t)

	if _, _, err := service.VerifyToken("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}

	// A token signed with another secret must not verify.
	result, err := service.Login(context.Background(), &models.LoginRequest{Email: "andi@example.edu", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	wrongKey := NewAuthService(newFakeRepository(newFakeData()), "other-secret", time.Hour, SystemClock(), testLogger())
	if _, _, err := wrongKey.VerifyToken(result.AccessToken); err == nil {
		t.Error("token accepted across secrets")
	}
}
