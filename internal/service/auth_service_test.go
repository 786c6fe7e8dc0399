package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/internal/core/ports/mocks"
	"money-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (
	*AuthServiceImpl,
	*mocks.MockUserRepository,
	*mocks.MockHashService,
	*mocks.MockTokenService,
	*gomock.Controller,
) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService(userRepo, hashSvc, tokenSvc)
	return svc, userRepo, hashSvc, tokenSvc, ctrl
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()

	userRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(nil, nil)
	hashSvc.EXPECT().Hash("StrongP@ss123").Return("$argon2id$hashed", nil)
	userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "ana@example.com", u.Email)
			assert.Equal(t, "$argon2id$hashed", u.PasswordHash)
			return nil
		},
	)

	user, err := svc.Register(ctx, "  Ana@Example.com ", "StrongP@ss123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, userRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(&domain.User{Email: "ana@example.com"}, nil)

	user, err := svc.Register(ctx, "ana@example.com", "password123")
	assert.Nil(t, user)
	requireCode(t, err, "AUTH_002")
}

func TestAuthService_Register_RaceOnUniqueIndex(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(nil, nil)
	hashSvc.EXPECT().Hash(gomock.Any()).Return("$argon2id$hashed", nil)
	userRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrDuplicate)

	_, err := svc.Register(ctx, "ana@example.com", "password123")
	requireCode(t, err, "AUTH_002")
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo, hashSvc, tokenSvc, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "$argon2id$hashed"}

	userRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(user, nil)
	hashSvc.EXPECT().Verify("correct_password", "$argon2id$hashed").Return(true, nil)
	tokenSvc.EXPECT().Generate(user.ID, user.Email).Return("jwt_token_here", time.Now().Add(24*time.Hour), nil)

	token, _, err := svc.Login(ctx, "ANA@example.com", "correct_password")
	require.NoError(t, err)
	assert.Equal(t, "jwt_token_here", token)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, userRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, nil)

	_, _, err := svc.Login(ctx, "nobody@example.com", "password")
	requireCode(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "$argon2id$hashed"}

	userRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(user, nil)
	hashSvc.EXPECT().Verify("wrong_password", "$argon2id$hashed").Return(false, nil)

	_, _, err := svc.Login(ctx, "ana@example.com", "wrong_password")
	requireCode(t, err, "AUTH_001")
}

func TestAuthService_Me(t *testing.T) {
	svc, userRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com"}
	userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	got, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	missing := uuid.New()
	userRepo.EXPECT().GetByID(ctx, missing).Return(nil, nil)
	_, err = svc.Me(ctx, missing)
	requireCode(t, err, "LED_003")
}
