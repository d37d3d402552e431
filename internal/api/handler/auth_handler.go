package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	ledger      ports.Ledger
	dailyReward int64
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, ledger ports.Ledger, dailyReward int64, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, ledger: ledger, dailyReward: dailyReward, log: log}
}

// Signup creates a new account with the signup bonus.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, user, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// Login authenticates a user, returns a JWT and grants the daily reward if
// it has not been claimed today.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	token, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	resp := authResponse{Token: token, User: user}
	granted, updated, err := h.ledger.ClaimDailyReward(ctx, user.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("daily reward check failed")
	} else {
		resp.User = updated
		resp.DailyReward = &dailyRewardResponse{Granted: granted, Coins: updated.Coins}
		if granted {
			resp.DailyReward.Amount = h.dailyReward
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout acknowledges a sign-out. Tokens are stateless and stay valid until
// expiry; clients discard theirs.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, _, err := ctxUser(c); err != nil {
		return err
	}
	h.authService.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's latest persisted record.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	user, err := h.ledger.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ClaimDailyReward grants the daily reward once per calendar day.
//
// @Summary      Claim the daily reward
// @Tags         rewards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dailyRewardResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /rewards/daily [post]
func (h *AuthHandler) ClaimDailyReward(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	granted, user, err := h.ledger.ClaimDailyReward(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	resp := dailyRewardResponse{Granted: granted, Coins: user.Coins}
	if granted {
		resp.Amount = h.dailyReward
	}
	return c.JSON(http.StatusOK, resp)
}
