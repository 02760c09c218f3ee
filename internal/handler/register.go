package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"varejopos/internal/apierror"
	"varejopos/internal/dto"
	"varejopos/internal/ledger"
	"varejopos/internal/model"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary Opens a new register session with an opening cash float
// @Tags register
// @Accept json
// @Produce json
// @Param body body dto.OpenRegisterRequest true "Opening data"
// @Success 201 {object} dto.RegisterReportResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operator, _ := uuid.Parse(req.OperatorID)

	session, err := h.svc.Open(c.Request.Context(), operator, req.OpeningBalance)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrRegisterAlreadyOpen {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, toReport(session))
}

// Current godoc
// @Summary Returns the open register session
// @Tags register
// @Produce json
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/register/current [get]
func (h *RegisterHandler) Current(c *gin.Context) {
	session := h.svc.Current()
	if session == nil {
		c.JSON(http.StatusNotFound, apierror.New("no open register session"))
		return
	}
	c.JSON(http.StatusOK, toReport(session))
}

// Withdraw godoc
// @Summary Records a manual cash withdrawal
// @Tags register
// @Accept json
// @Produce json
// @Param body body dto.CashMovementRequest true "Movement data"
// @Success 201 {object} dto.CashMovementResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/withdrawals [post]
func (h *RegisterHandler) Withdraw(c *gin.Context) {
	h.movement(c, h.svc.Withdraw)
}

// Deposit godoc
// @Summary Records a manual cash deposit
// @Tags register
// @Accept json
// @Produce json
// @Param body body dto.CashMovementRequest true "Movement data"
// @Success 201 {object} dto.CashMovementResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/deposits [post]
func (h *RegisterHandler) Deposit(c *gin.Context) {
	h.movement(c, h.svc.Deposit)
}

func (h *RegisterHandler) movement(c *gin.Context, apply func(context.Context, decimal.Decimal, string, uuid.UUID) (*model.CashMovement, error)) {
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operator, _ := uuid.Parse(req.OperatorID)

	mov, err := apply(c.Request.Context(), req.Amount, req.Reason, operator)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, dto.CashMovementResponse{
		ID:         mov.ID.String(),
		Kind:       mov.Kind,
		Amount:     mov.Amount,
		Reason:     mov.Reason,
		OperatorID: mov.OperatorID.String(),
		CreatedAt:  mov.CreatedAt.Format(time.RFC3339),
	})
}

// MovementReasons godoc
// @Summary Lists suggested reasons for manual cash movements
// @Tags register
// @Produce json
// @Success 200 {array} string
// @Router /v1/register/movement-reasons [get]
func (h *RegisterHandler) MovementReasons(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MovementReasonSuggestions)
}

// Close godoc
// @Summary Reconciles counted cash and closes the session
// @Tags register
// @Accept json
// @Produce json
// @Param body body dto.CloseRegisterRequest true "Counted cash"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operator, _ := uuid.Parse(req.OperatorID)

	session, err := h.svc.Close(c.Request.Context(), req.CountedCash, operator)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toReport(session))
}

// History godoc
// @Summary Lists closed register sessions, most recent first
// @Tags register
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.RegisterHistoryResponse
// @Failure 500 {object} apierror.APIError
// @Router /v1/register/history [get]
func (h *RegisterHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, total, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	resp := dto.RegisterHistoryResponse{Total: total, Page: page, Limit: limit}
	for i := range sessions {
		resp.Data = append(resp.Data, *toReport(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toReport(s *model.RegisterSession) *dto.RegisterReportResponse {
	report := &dto.RegisterReportResponse{
		ID:             s.ID.String(),
		ShiftNumber:    s.ShiftNumber,
		Status:         s.Status,
		OperatorID:     s.OperatorID.String(),
		OpeningBalance: s.OpeningBalance,
		Tenders: dto.TenderTotals{
			Cash:     s.CashTotal.Sub(s.OpeningBalance),
			Pix:      s.PixTotal,
			Credit:   s.CreditTotal,
			Debit:    s.DebitTotal,
			Deferred: s.DeferredTotal,
		},
		TotalSales:   s.TotalSales,
		ExpectedCash: ledger.ExpectedCash(s),
		CountedCash:  s.CountedCash,
		Difference:   s.Difference,
		OpenedAt:     s.OpenedAt.Format(time.RFC3339),
	}
	for _, m := range s.Movements {
		switch m.Kind {
		case model.MovementWithdrawal:
			report.Withdrawals = report.Withdrawals.Add(m.Amount)
		case model.MovementDeposit:
			report.Deposits = report.Deposits.Add(m.Amount)
		}
		report.Movements = append(report.Movements, dto.CashMovementResponse{
			ID:         m.ID.String(),
			Kind:       m.Kind,
			Amount:     m.Amount,
			Reason:     m.Reason,
			OperatorID: m.OperatorID.String(),
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		})
	}
	if s.ClosedAt != nil {
		closed := s.ClosedAt.Format(time.RFC3339)
		report.ClosedAt = &closed
	}
	return report
}
