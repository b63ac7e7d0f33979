package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// MemberQuerier defines the interface for member database operations
type MemberQuerier interface {
	CreateMember(ctx context.Context, arg queries.CreateMemberParams) (queries.Member, error)
	GetMemberByID(ctx context.Context, id int32) (queries.Member, error)
	ListMembers(ctx context.Context) ([]queries.Member, error)
	UpdateMember(ctx context.Context, arg queries.UpdateMemberParams) (queries.Member, error)
	DeleteMember(ctx context.Context, id int32) (int64, error)
	ListLoansByMember(ctx context.Context, memberID int32) ([]queries.LoanDetailRow, error)
}

// MemberService manages member records. The member roster is shared across
// libraries; loans, not members, carry the library scoping.
type MemberService struct {
	querier MemberQuerier
	now     func() time.Time
}

func NewMemberService(querier MemberQuerier) *MemberService {
	return &MemberService{querier: querier, now: time.Now}
}

// Create registers a member. A missing membership number is generated from
// the registration timestamp.
func (s *MemberService) Create(ctx context.Context, req models.CreateMemberRequest) (*models.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	number := ""
	if req.MembershipNumber != nil {
		number = *req.MembershipNumber
	}
	if number == "" {
		number = GenerateMembershipNumber(s.now())
	}

	member, err := s.querier.CreateMember(ctx, queries.CreateMemberParams{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            textFromPtr(req.Email),
		MembershipNumber: number,
		Phone:            textFromPtr(req.Phone),
		ImageUrl:         textFromPtr(req.ImageURL),
	})
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("membership number %s already exists: %w", number, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	resp := memberToResponse(member)
	return &resp, nil
}

// List returns all members ordered by name.
func (s *MemberService) List(ctx context.Context) ([]models.MemberResponse, error) {
	members, err := s.querier.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	responses := make([]models.MemberResponse, len(members))
	for i, m := range members {
		responses[i] = memberToResponse(m)
	}
	return responses, nil
}

// Get returns one member with their loan history attached.
func (s *MemberService) Get(ctx context.Context, id int32) (*models.MemberResponse, error) {
	member, err := s.querier.GetMemberByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	loans, err := s.querier.ListLoansByMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list member loans: %w", err)
	}

	resp := memberToResponse(member)
	resp.Loans = make([]models.LoanResponse, len(loans))
	for i, l := range loans {
		resp.Loans[i] = loanDetailToResponse(l)
	}
	return &resp, nil
}

// Update edits a member's profile fields. The auth identity link and the
// membership number are not touched here.
func (s *MemberService) Update(ctx context.Context, id int32, req models.UpdateMemberRequest) (*models.MemberResponse, error) {
	current, err := s.querier.GetMemberByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	params := queries.UpdateMemberParams{
		ID:        id,
		FirstName: current.FirstName,
		LastName:  current.LastName,
		Email:     current.Email,
		Phone:     current.Phone,
		ImageUrl:  current.ImageUrl,
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Email != nil {
		params.Email = textFromPtr(req.Email)
	}
	if req.Phone != nil {
		params.Phone = textFromPtr(req.Phone)
	}
	if req.ImageURL != nil {
		params.ImageUrl = textFromPtr(req.ImageURL)
	}

	member, err := s.querier.UpdateMember(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	resp := memberToResponse(member)
	return &resp, nil
}

// Delete removes a member and, through cascades, their loans.
func (s *MemberService) Delete(ctx context.Context, id int32) error {
	affected, err := s.querier.DeleteMember(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	return nil
}

// GenerateMembershipNumber derives a membership number from a timestamp, for
// members registered without one.
func GenerateMembershipNumber(t time.Time) string {
	return "MEM-" + t.Format("20060102150405")
}

func memberToResponse(m queries.Member) models.MemberResponse {
	resp := models.MemberResponse{
		ID:               m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            textToPtr(m.Email),
		MembershipNumber: m.MembershipNumber,
		Phone:            textToPtr(m.Phone),
		ImageURL:         textToPtr(m.ImageUrl),
		UserID:           int4ToPtr(m.UserID),
	}
	if m.CreatedAt.Valid {
		resp.CreatedAt = m.CreatedAt.Time
	}
	if m.UpdatedAt.Valid {
		resp.UpdatedAt = m.UpdatedAt.Time
	}
	return resp
}

func int4ToPtr(v pgtype.Int4) *int32 {
	if !v.Valid {
		return nil
	}
	return &v.Int32
}
