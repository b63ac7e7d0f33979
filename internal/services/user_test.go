package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// MockUserQuerier is a mock implementation of UserQuerier interface
type MockUserQuerier struct {
	mock.Mock
}

func (m *MockUserQuerier) CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *MockUserQuerier) GetUserByID(ctx context.Context, id int32) (queries.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *MockUserQuerier) GetUserByEmail(ctx context.Context, email string) (queries.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *MockUserQuerier) UpdateUserProfile(ctx context.Context, arg queries.UpdateUserProfileParams) (queries.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *MockUserQuerier) LinkUserToMember(ctx context.Context, arg queries.LinkUserToMemberParams) (queries.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *MockUserQuerier) UpdateUserPassword(ctx context.Context, arg queries.UpdateUserPasswordParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockUserQuerier) CreateMember(ctx context.Context, arg queries.CreateMemberParams) (queries.Member, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Member), args.Error(1)
}

func (m *MockUserQuerier) FindUnlinkedMemberByName(ctx context.Context, arg queries.FindUnlinkedMemberByNameParams) (queries.Member, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Member), args.Error(1)
}

func (m *MockUserQuerier) LinkMemberToUser(ctx context.Context, arg queries.LinkMemberToUserParams) (queries.Member, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Member), args.Error(1)
}

func newTestUserService(t *testing.T, querier UserQuerier) *UserService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewUserService(querier, newTestAuthService(t), logger)
	service.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
	}
	return service
}

func TestUserService_Register(t *testing.T) {
	t.Run("new accounts start as unlinked members", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("GetUserByEmail", mock.Anything, "ana@example.com").
			Return(queries.User{}, pgx.ErrNoRows)
		mockQuerier.On("CreateUser", mock.Anything, mock.MatchedBy(func(arg queries.CreateUserParams) bool {
			return arg.Email == "ana@example.com" &&
				arg.Role == string(models.RoleMember) &&
				arg.PasswordHash != "" &&
				arg.PasswordHash != "password123"
		})).Return(queries.User{
			ID:       7,
			Email:    "ana@example.com",
			Role:     string(models.RoleMember),
			IsActive: true,
		}, nil)

		user, err := service.Register(context.Background(), models.RegisterRequest{
			Email:    "Ana@Example.COM ",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, models.RoleMember, user.Role)
		assert.Nil(t, user.MemberID)
		mockQuerier.AssertExpectations(t)
	})

	t.Run("taken email is a conflict", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("GetUserByEmail", mock.Anything, "ana@example.com").
			Return(queries.User{ID: 7}, nil)

		_, err := service.Register(context.Background(), models.RegisterRequest{
			Email:    "ana@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, ErrConflict)
		mockQuerier.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		hash, err := service.authService.HashPassword("password123")
		require.NoError(t, err)

		mockQuerier.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(queries.User{
			ID:           7,
			Email:        "ana@example.com",
			PasswordHash: hash,
			Role:         string(models.RoleMember),
			MemberID:     pgtype.Int4{Int32: 42, Valid: true},
			IsActive:     true,
		}, nil)

		resp, err := service.Login(context.Background(), models.LoginRequest{
			Email:    "ana@example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, 3600, resp.ExpiresIn)

		// The access token carries the member link for row scoping.
		claims, err := service.authService.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, claims.MemberID)
		assert.Equal(t, int32(42), *claims.MemberID)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		hash, err := service.authService.HashPassword("password123")
		require.NoError(t, err)

		mockQuerier.On("GetUserByEmail", mock.Anything, "ana@example.com").
			Return(queries.User{ID: 7, PasswordHash: hash}, nil)

		_, err = service.Login(context.Background(), models.LoginRequest{
			Email:    "ana@example.com",
			Password: "wrongpassword",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(queries.User{}, pgx.ErrNoRows)

		_, err := service.Login(context.Background(), models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	req := models.UpdateProfileRequest{
		FirstName: "Ana",
		LastName:  "Petrova",
		Email:     "ana@example.com",
		Phone:     "070123456",
	}

	t.Run("claims an existing unlinked member with the same name", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("UpdateUserProfile", mock.Anything, queries.UpdateUserProfileParams{
			ID:          7,
			Email:       "ana@example.com",
			DisplayName: pgtype.Text{String: "Ana Petrova", Valid: true},
		}).Return(queries.User{ID: 7, Email: "ana@example.com", Role: string(models.RoleMember)}, nil)

		mockQuerier.On("FindUnlinkedMemberByName", mock.Anything, queries.FindUnlinkedMemberByNameParams{
			FirstName: "Ana",
			LastName:  "Petrova",
		}).Return(queries.Member{ID: 42, FirstName: "Ana", LastName: "Petrova"}, nil)

		mockQuerier.On("LinkMemberToUser", mock.Anything, mock.MatchedBy(func(arg queries.LinkMemberToUserParams) bool {
			return arg.ID == 42 && arg.UserID == 7
		})).Return(queries.Member{ID: 42}, nil)

		mockQuerier.On("LinkUserToMember", mock.Anything, queries.LinkUserToMemberParams{
			ID:       7,
			MemberID: 42,
			Role:     string(models.RoleMember),
		}).Return(queries.User{
			ID:       7,
			Email:    "ana@example.com",
			Role:     string(models.RoleMember),
			MemberID: pgtype.Int4{Int32: 42, Valid: true},
		}, nil)

		caller := models.Caller{UserID: 7, Role: models.RoleMember}
		user, err := service.UpdateProfile(context.Background(), caller, req)

		require.NoError(t, err)
		require.NotNil(t, user.MemberID)
		assert.Equal(t, int32(42), *user.MemberID)
		mockQuerier.AssertNotCalled(t, "CreateMember", mock.Anything, mock.Anything)
	})

	t.Run("creates a fresh member when no name matches", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("UpdateUserProfile", mock.Anything, mock.Anything).
			Return(queries.User{ID: 7, Email: "ana@example.com", Role: string(models.RoleMember)}, nil)
		mockQuerier.On("FindUnlinkedMemberByName", mock.Anything, mock.Anything).
			Return(queries.Member{}, pgx.ErrNoRows)
		mockQuerier.On("CreateMember", mock.Anything, mock.MatchedBy(func(arg queries.CreateMemberParams) bool {
			// now is pinned to 2026-03-01 12:30:45 in the test service.
			return arg.FirstName == "Ana" &&
				arg.MembershipNumber == "MEM-20260301123045" &&
				arg.UserID.Valid && arg.UserID.Int32 == 7
		})).Return(queries.Member{ID: 43}, nil)
		mockQuerier.On("LinkUserToMember", mock.Anything, mock.Anything).Return(queries.User{
			ID:       7,
			Email:    "ana@example.com",
			Role:     string(models.RoleMember),
			MemberID: pgtype.Int4{Int32: 43, Valid: true},
		}, nil)

		caller := models.Caller{UserID: 7, Role: models.RoleMember}
		user, err := service.UpdateProfile(context.Background(), caller, req)

		require.NoError(t, err)
		require.NotNil(t, user.MemberID)
		assert.Equal(t, int32(43), *user.MemberID)
		mockQuerier.AssertExpectations(t)
	})

	t.Run("admin accounts never get a member link", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("UpdateUserProfile", mock.Anything, mock.Anything).Return(queries.User{
			ID:        1,
			Email:     "admin@example.com",
			Role:      string(models.RoleAdmin),
			LibraryID: pgtype.Int4{Int32: 3, Valid: true},
		}, nil)

		caller := models.Caller{UserID: 1, Role: models.RoleAdmin, LibraryID: int32Ptr(3)}
		user, err := service.UpdateProfile(context.Background(), caller, req)

		require.NoError(t, err)
		assert.Nil(t, user.MemberID)
		mockQuerier.AssertNotCalled(t, "FindUnlinkedMemberByName", mock.Anything, mock.Anything)
		mockQuerier.AssertNotCalled(t, "LinkUserToMember", mock.Anything, mock.Anything)
	})

	t.Run("already linked accounts are left alone", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		mockQuerier.On("UpdateUserProfile", mock.Anything, mock.Anything).Return(queries.User{
			ID:       7,
			Email:    "ana@example.com",
			Role:     string(models.RoleMember),
			MemberID: pgtype.Int4{Int32: 42, Valid: true},
		}, nil)

		caller := models.Caller{UserID: 7, Role: models.RoleMember, MemberID: int32Ptr(42)}
		user, err := service.UpdateProfile(context.Background(), caller, req)

		require.NoError(t, err)
		assert.Equal(t, int32(42), *user.MemberID)
		mockQuerier.AssertNotCalled(t, "FindUnlinkedMemberByName", mock.Anything, mock.Anything)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Run("wrong current password is rejected", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		hash, err := service.authService.HashPassword("password123")
		require.NoError(t, err)

		mockQuerier.On("GetUserByID", mock.Anything, int32(7)).
			Return(queries.User{ID: 7, PasswordHash: hash}, nil)

		err = service.ChangePassword(context.Background(), 7, models.ChangePasswordRequest{
			CurrentPassword: "not-the-password",
			NewPassword:     "newpassword456",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockQuerier.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything)
	})

	t.Run("stores a fresh hash", func(t *testing.T) {
		mockQuerier := new(MockUserQuerier)
		service := newTestUserService(t, mockQuerier)

		hash, err := service.authService.HashPassword("password123")
		require.NoError(t, err)

		mockQuerier.On("GetUserByID", mock.Anything, int32(7)).
			Return(queries.User{ID: 7, PasswordHash: hash}, nil)
		mockQuerier.On("UpdateUserPassword", mock.Anything, mock.MatchedBy(func(arg queries.UpdateUserPasswordParams) bool {
			return arg.ID == 7 && arg.PasswordHash != hash && arg.PasswordHash != "newpassword456"
		})).Return(nil)

		err = service.ChangePassword(context.Background(), 7, models.ChangePasswordRequest{
			CurrentPassword: "password123",
			NewPassword:     "newpassword456",
		})

		assert.NoError(t, err)
		mockQuerier.AssertExpectations(t)
	})
}
