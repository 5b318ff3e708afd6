package handler

import (
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if sc, ok := usecase.AsStockConflictError(err); ok {
		return c.JSON(sc.HTTPStatus(), ErrorResponse{Error: sc.Error()})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getBuyerIDFromContext(c echo.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxBuyerIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func getSellerIDFromContext(c echo.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxSellerIDKey).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
