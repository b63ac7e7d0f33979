package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// MockBookQuerier is a mock implementation of BookQuerier interface
type MockBookQuerier struct {
	mock.Mock
}

func (m *MockBookQuerier) CreateBook(ctx context.Context, arg queries.CreateBookParams) (queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) GetBookByID(ctx context.Context, id int32) (queries.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) GetBookByISBN(ctx context.Context, isbn pgtype.Text) (queries.Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) UpdateBook(ctx context.Context, arg queries.UpdateBookParams) (queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) DeleteBook(ctx context.Context, id int32) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookQuerier) SearchBooks(ctx context.Context, arg queries.SearchBooksParams) ([]queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.Book), args.Error(1)
}

func (m *MockBookQuerier) CountBooks(ctx context.Context, arg queries.CountBooksParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookQuerier) ListBookCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookQuerier) ListAvailableCopiesByBook(ctx context.Context, bookID int32) ([]queries.AvailableCopyRow, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]queries.AvailableCopyRow), args.Error(1)
}

func stringPtr(s string) *string { return &s }

func TestBookService_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		mockQuerier := new(MockBookQuerier)
		service := NewBookService(mockQuerier)

		mockQuerier.On("GetBookByISBN", mock.Anything, pgtype.Text{String: "9780679760801", Valid: true}).
			Return(queries.Book{}, pgx.ErrNoRows)
		mockQuerier.On("CreateBook", mock.Anything, mock.MatchedBy(func(arg queries.CreateBookParams) bool {
			return arg.Title == "The Master and Margarita" && arg.Isbn.Valid
		})).Return(queries.Book{
			ID:     1,
			Title:  "The Master and Margarita",
			Author: "Mikhail Bulgakov",
			Isbn:   pgtype.Text{String: "9780679760801", Valid: true},
		}, nil)

		book, err := service.Create(context.Background(), models.CreateBookRequest{
			Title:  "The Master and Margarita",
			Author: "Mikhail Bulgakov",
			ISBN:   stringPtr("9780679760801"),
		})

		assert.NoError(t, err)
		assert.Equal(t, int32(1), book.ID)
		assert.Equal(t, "9780679760801", *book.ISBN)
		mockQuerier.AssertExpectations(t)
	})

	t.Run("duplicate ISBN is a conflict", func(t *testing.T) {
		mockQuerier := new(MockBookQuerier)
		service := NewBookService(mockQuerier)

		mockQuerier.On("GetBookByISBN", mock.Anything, mock.Anything).
			Return(queries.Book{ID: 9}, nil)

		_, err := service.Create(context.Background(), models.CreateBookRequest{
			Title:  "The Master and Margarita",
			Author: "Mikhail Bulgakov",
			ISBN:   stringPtr("9780679760801"),
		})

		assert.ErrorIs(t, err, ErrConflict)
		mockQuerier.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		mockQuerier := new(MockBookQuerier)
		service := NewBookService(mockQuerier)

		_, err := service.Create(context.Background(), models.CreateBookRequest{Author: "Anonymous"})

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBookService_Search(t *testing.T) {
	t.Run("normalizes paging and computes total pages", func(t *testing.T) {
		mockQuerier := new(MockBookQuerier)
		service := NewBookService(mockQuerier)

		mockQuerier.On("SearchBooks", mock.Anything, mock.MatchedBy(func(arg queries.SearchBooksParams) bool {
			return arg.Limit == 20 && arg.Offset == 0 && !arg.Title.Valid
		})).Return([]queries.Book{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, nil)
		mockQuerier.On("CountBooks", mock.Anything, mock.Anything).Return(int64(45), nil)

		result, err := service.Search(context.Background(), models.BookSearchRequest{Page: 0, Limit: 0})

		assert.NoError(t, err)
		assert.Len(t, result.Books, 2)
		assert.Equal(t, 1, result.Pagination.Page)
		assert.Equal(t, int64(45), result.Pagination.Total)
		assert.Equal(t, 3, result.Pagination.TotalPages)
	})

	t.Run("library filter narrows to books with a local copy", func(t *testing.T) {
		mockQuerier := new(MockBookQuerier)
		service := NewBookService(mockQuerier)

		mockQuerier.On("SearchBooks", mock.Anything, mock.MatchedBy(func(arg queries.SearchBooksParams) bool {
			return arg.LibraryID.Valid && arg.LibraryID.Int32 == 3 &&
				arg.Title.Valid && arg.Title.String == "margarita"
		})).Return([]queries.Book{{ID: 1}}, nil)
		mockQuerier.On("CountBooks", mock.Anything, mock.Anything).Return(int64(1), nil)

		result, err := service.Search(context.Background(), models.BookSearchRequest{
			Title:     "margarita",
			LibraryID: int32Ptr(3),
			Page:      1,
			Limit:     20,
		})

		assert.NoError(t, err)
		assert.Len(t, result.Books, 1)
		mockQuerier.AssertExpectations(t)
	})
}

func TestBookService_Update_MergesUnsetFields(t *testing.T) {
	mockQuerier := new(MockBookQuerier)
	service := NewBookService(mockQuerier)

	current := queries.Book{
		ID:       1,
		Title:    "Old Title",
		Author:   "Mikhail Bulgakov",
		Category: pgtype.Text{String: "fiction", Valid: true},
	}
	mockQuerier.On("GetBookByID", mock.Anything, int32(1)).Return(current, nil)
	mockQuerier.On("UpdateBook", mock.Anything, mock.MatchedBy(func(arg queries.UpdateBookParams) bool {
		// Only the title changes; everything else keeps its current value.
		return arg.Title == "New Title" &&
			arg.Author == "Mikhail Bulgakov" &&
			arg.Category.String == "fiction"
	})).Return(queries.Book{ID: 1, Title: "New Title", Author: "Mikhail Bulgakov"}, nil)

	book, err := service.Update(context.Background(), 1, models.UpdateBookRequest{
		Title: stringPtr("New Title"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "New Title", book.Title)
	mockQuerier.AssertExpectations(t)
}

func TestBookService_Delete(t *testing.T) {
	mockQuerier := new(MockBookQuerier)
	service := NewBookService(mockQuerier)

	mockQuerier.On("DeleteBook", mock.Anything, int32(404)).Return(int64(0), nil)

	assert.ErrorIs(t, service.Delete(context.Background(), 404), ErrNotFound)
}
