package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AdminHandler serves the payment review dashboard.
type AdminHandler struct {
	ledger ports.Ledger
	feed   ports.ReviewFeed
	log    zerolog.Logger
}

func NewAdminHandler(ledger ports.Ledger, feed ports.ReviewFeed, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{ledger: ledger, feed: feed, log: log}
}

// ListTransactions handles GET /admin/transactions.
//
// @Summary      List payment submissions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200     {array}   domain.Transaction
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /admin/transactions [get]
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	status := domain.TransactionStatus(c.QueryParam("status"))
	switch status {
	case "", domain.TxPending, domain.TxApproved, domain.TxRejected:
	default:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "status must be one of: pending approved rejected")
	}
	return c.JSON(http.StatusOK, h.ledger.ListTransactionsByStatus(c.Request().Context(), status))
}

// Approve handles POST /admin/transactions/:id/approve.
//
// @Summary      Approve a payment and credit its coins
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  reviewResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /admin/transactions/{id}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.review(c, domain.TxApproved)
}

// Reject handles POST /admin/transactions/:id/reject.
//
// @Summary      Reject a payment
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  reviewResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /admin/transactions/{id}/reject [post]
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.review(c, domain.TxRejected)
}

func (h *AdminHandler) review(c echo.Context, status domain.TransactionStatus) error {
	adminID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	tx, err := h.ledger.SetTransactionStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	h.log.Info().Str("admin_id", adminID).Str("tx_id", tx.ID).Str("status", string(status)).Msg("payment reviewed")
	return c.JSON(http.StatusOK, reviewResponse{Transaction: *tx, ReviewedAt: time.Now()})
}

// ListUsers handles GET /admin/users.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ledger.ListUsers(c.Request().Context()))
}

// Feed handles GET /admin/feed: it upgrades to a websocket and streams
// review snapshots until either side goes away.
//
// @Summary      Live review feed
// @Tags         admin
// @Security     BearerAuth
// @Param        token  query  string  false  "JWT for clients that cannot set headers"
// @Success      101
// @Router       /admin/feed [get]
func (h *AdminHandler) Feed(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	snapshots, cancel := h.feed.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					h.log.Debug().Err(err).Msg("review feed write failed")
				}
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
