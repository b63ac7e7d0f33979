package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// LoanHandler exposes the loan lifecycle. Admin endpoints see their library's
// loans; member endpoints see the caller's own.
type LoanHandler struct {
	loanService *services.LoanService
}

func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	loans, err := h.loanService.List(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, models.LoanListResponse{
		Loans: loans,
		Pagination: models.Pagination{
			Page:       1,
			Limit:      len(loans),
			Total:      int64(len(loans)),
			TotalPages: 1,
		},
	}, "")
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, loan, "")
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, loan, "Loan created")
}

// BorrowOptions is the member borrow page: the book plus its available
// copies across all libraries.
func (h *LoanHandler) BorrowOptions(c *gin.Context) {
	bookID, ok := paramID(c, "book_id")
	if !ok {
		return
	}

	page, err := h.loanService.BorrowOptions(c.Request.Context(), bookID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, page, "")
}

func (h *LoanHandler) Borrow(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.Borrow(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, loan, "Book borrowed")
}

func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.Return(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, loan, "Loan returned")
}

func (h *LoanHandler) PayFine(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.PayFine(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, loan, "Fine settled")
}

func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, loan, "Loan updated")
}

func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.loanService.Delete(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Loan deleted")
}
