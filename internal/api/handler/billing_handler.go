package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// BillingHandler serves the plan catalog and payment submissions.
type BillingHandler struct {
	ledger    ports.Ledger
	payee     string
	payeeName string
}

func NewBillingHandler(ledger ports.Ledger, payee, payeeName string) *BillingHandler {
	return &BillingHandler{ledger: ledger, payee: payee, payeeName: payeeName}
}

// Plans lists the purchasable coin bundles.
//
// @Summary      List plans
// @Tags         billing
// @Produce      json
// @Success      200  {array}  domain.Plan
// @Router       /plans [get]
func (h *BillingHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Plans)
}

// PaymentLink returns the UPI deep link for a plan.
//
// @Summary      Payment link for a plan
// @Tags         billing
// @Produce      json
// @Param        id   path      string  true  "Plan id"
// @Success      200  {object}  paymentLinkResponse
// @Failure      404  {object}  errorResponse
// @Router       /plans/{id}/payment [get]
func (h *BillingHandler) PaymentLink(c echo.Context) error {
	plan, err := domain.FindPlan(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentLinkResponse{
		Plan: plan,
		URI:  domain.PaymentURI(h.payee, h.payeeName, plan.Price),
	})
}

// Submit records a payment reference for manual review.
//
// @Summary      Submit a payment reference
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitPaymentRequest  true  "Plan and UTR"
// @Success      201   {object}  domain.Transaction
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /billing/transactions [post]
func (h *BillingHandler) Submit(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req submitPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	plan, err := domain.FindPlan(req.PlanID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.ledger.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	tx, err := h.ledger.CreateTransaction(ctx, user.ID, user.Name, plan, req.UTR)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

// List returns the caller's submissions, newest first.
//
// @Summary      List my payment submissions
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Transaction
// @Router       /billing/transactions [get]
func (h *BillingHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.ledger.ListUserTransactions(c.Request().Context(), userID))
}
