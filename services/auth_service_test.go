package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gridlab/auth"
	"gridlab/domain"
	"gridlab/errors"
	"gridlab/mocks"
	"gridlab/repositories"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(email, gomock.Not(password), domain.Member).
			Return("user-uuid", nil).
			Times(1)

		token, err := svc.Register(email, password)

		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register("test@example.com", "simple")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		email := "duplicate@example.com"

		mockRepo.EXPECT().
			CreateUser(email, gomock.Any(), domain.Member).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(email, "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	email := "user@example.com"
	password := "Secret123456!"
	hashedPassword, _ := auth.HashPassword(password)
	storedUser := repositories.User{
		ID:           "uuid-123",
		Email:        email,
		PasswordHash: hashedPassword,
		Authority:    domain.Admin,
	}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByEmail(email).Return(storedUser, nil).Times(1)

		token, err := svc.Login(email, password)

		req.NoError(err)
		req.NotEmpty(token)

		// The token round-trips to the stored identity.
		ident, err := svc.Authenticate(token)
		req.NoError(err)
		req.Equal(email, ident.UserID)
		req.Equal(domain.Admin, ident.Authority)
	})

	t.Run("should fail with wrong password", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByEmail(email).Return(storedUser, nil).Times(1)

		_, err := svc.Login(email, "WrongPassword1!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail with unknown user without leaking existence", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByEmail("ghost@example.com").
			Return(repositories.User{}, errors.ErrUserNotFound).Times(1)

		_, err := svc.Login("ghost@example.com", password)

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Authenticate_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAuthService(mocks.NewMockIUserRepository(ctrl), 24*time.Hour)

	_, err := svc.Authenticate("not-a-jwt")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
