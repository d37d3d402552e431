package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// stubLedger embeds the interface so tests only implement what they call.
type stubLedger struct {
	ports.Ledger

	users     map[string]*domain.User
	txs       []domain.Transaction
	claimFn   func(userID string) (bool, *domain.User, error)
	setStatus func(txID string, status domain.TransactionStatus) (*domain.Transaction, error)
	lastQuery domain.TransactionStatus
}

func (s *stubLedger) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubLedger) ListUsers(context.Context) []domain.User {
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

func (s *stubLedger) ClaimDailyReward(_ context.Context, userID string) (bool, *domain.User, error) {
	return s.claimFn(userID)
}

func (s *stubLedger) CreateTransaction(_ context.Context, userID, userName string, plan domain.Plan, utr string) (*domain.Transaction, error) {
	if strings.TrimSpace(utr) == "" {
		return nil, domain.ErrInvalidReference
	}
	tx := domain.Transaction{ID: "tx_1", UserID: userID, UserName: userName, PlanID: plan.ID, PlanName: plan.Name, Amount: plan.Price, Coins: plan.Coins, UTR: utr, Status: domain.TxPending}
	s.txs = append(s.txs, tx)
	return &tx, nil
}

func (s *stubLedger) ListUserTransactions(_ context.Context, userID string) []domain.Transaction {
	out := []domain.Transaction{}
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

func (s *stubLedger) ListTransactionsByStatus(_ context.Context, status domain.TransactionStatus) []domain.Transaction {
	s.lastQuery = status
	return s.txs
}

func (s *stubLedger) SetTransactionStatus(_ context.Context, txID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	return s.setStatus(txID, status)
}

type stubAuthService struct {
	signupFn func(ctx context.Context, name, email, password string) (string, *domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
	logouts  int
}

func (s *stubAuthService) Signup(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	return s.signupFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(context.Context) { s.logouts++ }

func (s *stubAuthService) CurrentUser(context.Context) *domain.User { return nil }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser marks c as authenticated the way the Auth middleware does.
func asUser(c echo.Context, id string, role domain.Role) {
	c.Set("user_id", id)
	c.Set("role", string(role))
}
