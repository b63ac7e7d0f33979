package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// MockMemberQuerier is a mock implementation of MemberQuerier interface
type MockMemberQuerier struct {
	mock.Mock
}

func (m *MockMemberQuerier) CreateMember(ctx context.Context, arg queries.CreateMemberParams) (queries.Member, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Member), args.Error(1)
}

func (m *MockMemberQuerier) GetMemberByID(ctx context.Context, id int32) (queries.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Member), args.Error(1)
}

func (m *MockMemberQuerier) ListMembers(ctx context.Context) ([]queries.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]queries.Member), args.Error(1)
}

func (m *MockMemberQuerier) UpdateMember(ctx context.Context, arg queries.UpdateMemberParams) (queries.Member, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Member), args.Error(1)
}

func (m *MockMemberQuerier) DeleteMember(ctx context.Context, id int32) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberQuerier) ListLoansByMember(ctx context.Context, memberID int32) ([]queries.LoanDetailRow, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]queries.LoanDetailRow), args.Error(1)
}

func TestMemberService_Create(t *testing.T) {
	t.Run("missing membership number is generated", func(t *testing.T) {
		mockQuerier := new(MockMemberQuerier)
		service := NewMemberService(mockQuerier)
		service.now = func() time.Time {
			return time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
		}

		mockQuerier.On("CreateMember", mock.Anything, mock.MatchedBy(func(arg queries.CreateMemberParams) bool {
			return arg.MembershipNumber == "MEM-20260301123045"
		})).Return(queries.Member{
			ID:               42,
			FirstName:        "Ana",
			LastName:         "Petrova",
			MembershipNumber: "MEM-20260301123045",
		}, nil)

		member, err := service.Create(context.Background(), models.CreateMemberRequest{
			FirstName: "Ana",
			LastName:  "Petrova",
		})

		require.NoError(t, err)
		assert.Equal(t, "MEM-20260301123045", member.MembershipNumber)
	})

	t.Run("explicit membership number is kept", func(t *testing.T) {
		mockQuerier := new(MockMemberQuerier)
		service := NewMemberService(mockQuerier)

		mockQuerier.On("CreateMember", mock.Anything, mock.MatchedBy(func(arg queries.CreateMemberParams) bool {
			return arg.MembershipNumber == "MEM-0042"
		})).Return(queries.Member{ID: 42, MembershipNumber: "MEM-0042"}, nil)

		_, err := service.Create(context.Background(), models.CreateMemberRequest{
			FirstName:        "Ana",
			LastName:         "Petrova",
			MembershipNumber: stringPtr("MEM-0042"),
		})

		assert.NoError(t, err)
		mockQuerier.AssertExpectations(t)
	})
}

func TestMemberService_Get_AttachesLoans(t *testing.T) {
	mockQuerier := new(MockMemberQuerier)
	service := NewMemberService(mockQuerier)

	mockQuerier.On("GetMemberByID", mock.Anything, int32(42)).Return(queries.Member{
		ID:        42,
		FirstName: "Ana",
		LastName:  "Petrova",
	}, nil)
	mockQuerier.On("ListLoansByMember", mock.Anything, int32(42)).Return([]queries.LoanDetailRow{
		activeLoanDetail(1, 42, 7, 3, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)),
	}, nil)

	member, err := service.Get(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, member.Loans, 1)
	assert.Equal(t, "The Master and Margarita", member.Loans[0].BookTitle)
}

func TestMemberService_Get_NotFound(t *testing.T) {
	mockQuerier := new(MockMemberQuerier)
	service := NewMemberService(mockQuerier)

	mockQuerier.On("GetMemberByID", mock.Anything, int32(404)).Return(queries.Member{}, pgx.ErrNoRows)

	_, err := service.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberService_Delete(t *testing.T) {
	mockQuerier := new(MockMemberQuerier)
	service := NewMemberService(mockQuerier)

	mockQuerier.On("DeleteMember", mock.Anything, int32(404)).Return(int64(0), nil)

	assert.ErrorIs(t, service.Delete(context.Background(), 404), ErrNotFound)
}
