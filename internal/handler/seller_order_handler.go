package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SellerOrderHandler struct {
	orders    *usecase.SellerOrderUsecase
	inventory *usecase.SellerInventoryUsecase
}

func NewSellerOrderHandler(orders *usecase.SellerOrderUsecase, inventory *usecase.SellerInventoryUsecase) *SellerOrderHandler {
	return &SellerOrderHandler{orders: orders, inventory: inventory}
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type SetStockRequest struct {
	VariantID int64  `json:"variant_id"`
	NewStock  int64  `json:"new_stock"`
	Reason    string `json:"reason"`
}

func (h *SellerOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/seller")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.SellerRoleGuard())

	g.GET("/orders", h.list)
	g.PATCH("/orders/:id/status", h.updateStatus)
	g.PUT("/inventory", h.setStock)
}

func (h *SellerOrderHandler) list(c echo.Context) error {
	sellerID, ok := getSellerIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	in := usecase.SellerOrderListInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	out, err := h.orders.ListOrders(c.Request().Context(), sellerID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerOrderHandler) updateStatus(c echo.Context) error {
	sellerID, ok := getSellerIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	actorID, _ := getBuyerIDFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.orders.UpdateStatus(c.Request().Context(), sellerID, actorID, id, usecase.UpdateOrderStatusInput{
		Status:         model.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerOrderHandler) setStock(c echo.Context) error {
	sellerID, ok := getSellerIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	actorID, _ := getBuyerIDFromContext(c)

	var req SetStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.inventory.SetStock(c.Request().Context(), sellerID, actorID, usecase.SetStockInput{
		VariantID: req.VariantID,
		NewStock:  req.NewStock,
		Reason:    req.Reason,
	}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
