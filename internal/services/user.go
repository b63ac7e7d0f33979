package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// UserQuerier defines the interface for account database operations
type UserQuerier interface {
	CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error)
	GetUserByID(ctx context.Context, id int32) (queries.User, error)
	GetUserByEmail(ctx context.Context, email string) (queries.User, error)
	UpdateUserProfile(ctx context.Context, arg queries.UpdateUserProfileParams) (queries.User, error)
	LinkUserToMember(ctx context.Context, arg queries.LinkUserToMemberParams) (queries.User, error)
	UpdateUserPassword(ctx context.Context, arg queries.UpdateUserPasswordParams) error
	CreateMember(ctx context.Context, arg queries.CreateMemberParams) (queries.Member, error)
	FindUnlinkedMemberByName(ctx context.Context, arg queries.FindUnlinkedMemberByNameParams) (queries.Member, error)
	LinkMemberToUser(ctx context.Context, arg queries.LinkMemberToUserParams) (queries.Member, error)
}

// UserService manages auth identities: registration, login, token refresh,
// password changes, and the profile update that links an account to a member
// record.
type UserService struct {
	querier     UserQuerier
	authService *AuthService
	logger      *slog.Logger
	now         func() time.Time
}

func NewUserService(querier UserQuerier, authService *AuthService, logger *slog.Logger) *UserService {
	return &UserService{
		querier:     querier,
		authService: authService,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a new account. Fresh accounts start as members with no
// member record linked yet; the link happens on their first profile update.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.querier.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.querier.CreateUser(ctx, queries.CreateUserParams{
		Email:        email,
		DisplayName:  textFromFilter(strings.TrimSpace(req.DisplayName)),
		PasswordHash: passwordHash,
		Role:         string(models.RoleMember),
	})
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", email)

	resp := userToModel(user)
	return &resp, nil
}

// Login verifies credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	row, err := s.querier.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.authService.VerifyPassword(row.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user := userToModel(row)
	accessToken, refreshToken, err := s.authService.GenerateTokens(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &models.LoginResponse{
		User:         &user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.authService.tokenExpiry.Seconds()),
	}, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair, re-reading
// the account so a link or role change since login lands in the new claims.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.authService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	row, err := s.querier.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !row.IsActive {
		return nil, ErrInvalidToken
	}

	user := userToModel(row)
	accessToken, newRefreshToken, err := s.authService.GenerateTokens(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// The old refresh token is single use.
	if err := s.authService.BlacklistRefreshToken(refreshToken); err != nil {
		s.logger.Error("Failed to blacklist used refresh token", "error", err)
	}

	return &models.LoginResponse{
		User:         &user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.authService.tokenExpiry.Seconds()),
	}, nil
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, userID int32) (*models.User, error) {
	row, err := s.querier.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := userToModel(row)
	return &user, nil
}

// UpdateProfile updates the caller's account and, for a non-admin account
// with no member link yet, links it to a member record. An existing unlinked
// member with the exact same first and last name is claimed; otherwise a new
// member is created with a generated membership number.
func (s *UserService) UpdateProfile(ctx context.Context, caller models.Caller, req models.UpdateProfileRequest) (*models.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	displayName := models.MemberFullName(req.FirstName, req.LastName)
	row, err := s.querier.UpdateUserProfile(ctx, queries.UpdateUserProfileParams{
		ID:          caller.UserID,
		Email:       email,
		DisplayName: textFromFilter(displayName),
	})
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", caller.UserID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if caller.IsAdmin() || row.MemberID.Valid {
		user := userToModel(row)
		return &user, nil
	}

	member, err := s.linkOrCreateMember(ctx, caller.UserID, req.FirstName, req.LastName, email, phone)
	if err != nil {
		return nil, err
	}

	row, err = s.querier.LinkUserToMember(ctx, queries.LinkUserToMemberParams{
		ID:       caller.UserID,
		MemberID: member.ID,
		Role:     string(models.RoleMember),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to link user to member: %w", err)
	}

	s.logger.Info("User linked to member", "user_id", caller.UserID, "member_id", member.ID)

	user := userToModel(row)
	return &user, nil
}

// linkOrCreateMember finds an unclaimed member by exact name or registers a
// fresh one.
func (s *UserService) linkOrCreateMember(ctx context.Context, userID int32, firstName, lastName, email, phone string) (*queries.Member, error) {
	existing, err := s.querier.FindUnlinkedMemberByName(ctx, queries.FindUnlinkedMemberByNameParams{
		FirstName: firstName,
		LastName:  lastName,
	})
	if err == nil {
		member, err := s.querier.LinkMemberToUser(ctx, queries.LinkMemberToUserParams{
			ID:     existing.ID,
			UserID: userID,
			Email:  textFromFilter(email),
			Phone:  textFromFilter(phone),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to claim member record: %w", err)
		}
		return &member, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up member record: %w", err)
	}

	member, err := s.querier.CreateMember(ctx, queries.CreateMemberParams{
		FirstName:        firstName,
		LastName:         lastName,
		Email:            textFromFilter(email),
		MembershipNumber: GenerateMembershipNumber(s.now()),
		Phone:            textFromFilter(phone),
		UserID:           pgtype.Int4{Int32: userID, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create member record: %w", err)
	}
	return &member, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int32, req models.ChangePasswordRequest) error {
	row, err := s.querier.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.authService.VerifyPassword(row.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := s.authService.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.querier.UpdateUserPassword(ctx, queries.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: newHash,
	}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// Logout revokes both tokens of the session.
func (s *UserService) Logout(_ context.Context, accessToken, refreshToken string) error {
	if err := s.authService.BlacklistToken(accessToken); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	if refreshToken != "" {
		if err := s.authService.BlacklistRefreshToken(refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	return nil
}

func userToModel(u queries.User) models.User {
	user := models.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      models.UserRole(u.Role),
		LibraryID: int4ToPtr(u.LibraryID),
		MemberID:  int4ToPtr(u.MemberID),
		IsActive:  u.IsActive,
	}
	if u.DisplayName.Valid {
		user.DisplayName = u.DisplayName.String
	}
	if u.CreatedAt.Valid {
		user.CreatedAt = u.CreatedAt.Time
	}
	if u.UpdatedAt.Valid {
		user.UpdatedAt = u.UpdatedAt.Time
	}
	return user
}
