package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/auth"
)

type fakeUserStore struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (int64, error) {
	if _, ok := f.users[user.Email]; ok {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	id := f.nextID
	f.nextID++
	clone := *user
	clone.ID = id
	f.users[user.Email] = &clone
	return id, nil
}

func newAuthHarness() (*AuthService, *fakeUserStore) {
	store := newFakeUserStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "classplanner-test",
	})
	return NewAuthService(store, jwtService), store
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    "instructor@example.com",
		Password: "sup3rsecret",
		FullName: "Jordan Rivers",
		RoleType: "INSTRUCTOR",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthHarness()

	token, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "Bearer" {
		t.Fatalf("unexpected token response: %+v", token)
	}
	if token.RoleType != "INSTRUCTOR" {
		t.Fatalf("roleType = %s", token.RoleType)
	}

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "instructor@example.com", Password: "sup3rsecret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.UserID != token.UserID {
		t.Fatalf("login userID = %d, want %d", login.UserID, token.UserID)
	}
}

func TestRegisterPasswordRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthHarness()

	t.Run("too short", func(t *testing.T) {
		req := registerRequest()
		req.Password = "ab1"
		if _, err := svc.Register(ctx, req); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("letters only", func(t *testing.T) {
		req := registerRequest()
		req.Password = "onlyletters"
		if _, err := svc.Register(ctx, req); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("digits only", func(t *testing.T) {
		req := registerRequest()
		req.Password = "12345678"
		if _, err := svc.Register(ctx, req); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthHarness()

	if _, err := svc.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, registerRequest()); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthHarness()

	if _, err := svc.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown account must be indistinguishable.
	_, wrongPass := svc.Login(ctx, &dto.LoginRequest{Email: "instructor@example.com", Password: "wrongpass1"})
	_, unknown := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "sup3rsecret"})

	if !errors.Is(wrongPass, apperrors.ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", wrongPass)
	}
	if !errors.Is(unknown, apperrors.ErrInvalidCredentials) {
		t.Fatalf("unknown account error = %v, want ErrInvalidCredentials", unknown)
	}
}
