package handler

import (
	"errors"
	"net/http"
	"prepdeck-server/internal/dto"
	"prepdeck-server/internal/middleware"
	"prepdeck-server/internal/service"

	"github.com/labstack/echo/v4"
)

type ContentHandler struct {
	contentService     service.ContentService
	entitlementService service.EntitlementService
}

func NewContentHandler(contentService service.ContentService, entitlementService service.EntitlementService) *ContentHandler {
	return &ContentHandler{
		contentService:     contentService,
		entitlementService: entitlementService,
	}
}

func (h *ContentHandler) ListQuestions(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	moduleTitle := c.Param("module")

	questions, err := h.contentService.ListQuestions(ctx, userID, moduleTitle)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, questions)
}

func (h *ContentHandler) GetQuestion(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	questionID := c.Param("id")

	question, err := h.contentService.GetQuestion(ctx, userID, questionID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "question not found")
		}
		if errors.Is(err, service.ErrContentLocked) {
			return echo.NewHTTPError(http.StatusPaymentRequired, "paid content, purchase required")
		}
		return err
	}

	return c.JSON(http.StatusOK, question)
}

func (h *ContentHandler) GetEntitlements(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	ent, purchases, err := h.entitlementService.GetEntitlements(ctx, userID)
	if err != nil {
		return err
	}

	modules := make(map[string]bool, len(purchases))
	for _, p := range purchases {
		modules[p.ModuleKey] = true
	}

	return c.JSON(http.StatusOK, &dto.EntitlementsResponse{
		GlobalAccess:     ent.GlobalAccess,
		IsPaid:           ent.IsPaid,
		PurchasedModules: modules,
	})
}
