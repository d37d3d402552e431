package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

// StudioHandler exposes the paid image actions. Images travel as base64 in
// JSON bodies.
type StudioHandler struct {
	studio ports.StudioService
	users  ports.UserDirectory
}

func NewStudioHandler(studio ports.StudioService, users ports.UserDirectory) *StudioHandler {
	return &StudioHandler{studio: studio, users: users}
}

// Generate handles POST /studio/generate.
//
// @Summary      Generate an image
// @Tags         studio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Rejects a concurrent duplicate submission"
// @Param        body             body      generateRequest  true   "Prompt and aspect ratio"
// @Success      200              {object}  imageResponse
// @Failure      402              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /studio/generate [post]
func (h *StudioHandler) Generate(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	img, err := h.studio.Generate(c.Request().Context(), userID, req.Prompt, domain.AspectRatio(req.AspectRatio))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.imageResponse(c, userID, img))
}

// Edit handles POST /studio/edit.
//
// @Summary      Edit an image
// @Tags         studio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string       false  "Rejects a concurrent duplicate submission"
// @Param        body             body      editRequest  true   "Base64 image and instruction"
// @Success      200              {object}  imageResponse
// @Failure      402              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /studio/edit [post]
func (h *StudioHandler) Edit(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req editRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	upload, err := decodeUpload(req.Image, req.MIMEType)
	if err != nil {
		return err
	}

	img, err := h.studio.Edit(c.Request().Context(), userID, upload, req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.imageResponse(c, userID, img))
}

// Analyze handles POST /studio/analyze.
//
// @Summary      Analyze an image
// @Tags         studio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Rejects a concurrent duplicate submission"
// @Param        body             body      analyzeRequest  true   "Base64 image and optional question"
// @Success      200              {object}  analysisResponse
// @Failure      402              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /studio/analyze [post]
func (h *StudioHandler) Analyze(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	upload, err := decodeUpload(req.Image, req.MIMEType)
	if err != nil {
		return err
	}

	text, err := h.studio.Analyze(c.Request().Context(), userID, upload, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysisResponse{Text: text, Coins: h.coins(c, userID)})
}

func (h *StudioHandler) imageResponse(c echo.Context, userID string, img *domain.Image) imageResponse {
	return imageResponse{
		Image:    base64.StdEncoding.EncodeToString(img.Data),
		MIMEType: img.MIMEType,
		Coins:    h.coins(c, userID),
	}
}

// coins reads the balance after the operation settled. A lookup failure
// reports zero; the operation itself already succeeded.
func (h *StudioHandler) coins(c echo.Context, userID string) int64 {
	u, err := h.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return 0
	}
	return u.Coins
}

func decodeUpload(b64, mime string) (domain.Image, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return domain.Image{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "image must be base64 encoded")
	}
	return domain.Image{Data: data, MIMEType: mime}, nil
}
