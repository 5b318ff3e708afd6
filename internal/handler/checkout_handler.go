package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc        *usecase.CheckoutUsecase
	validator *usecase.StockValidator
	carts     repo.CartStore
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, sv *usecase.StockValidator, carts repo.CartStore) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, validator: sv, carts: carts}
}

type CheckoutRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method"`
}

// 確定の結果。成功でも失敗でも同じ形（部分成功は無い）
type CheckoutResponse struct {
	Success     bool                   `json:"success"`
	Orders      []usecase.CreatedOrder `json:"orders,omitempty"`
	PaymentID   int64                  `json:"payment_id,omitempty"`
	TotalAmount int64                  `json:"total_amount,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Fields      map[string]string      `json:"fields,omitempty"`
	Items       []usecase.InvalidItem  `json:"invalid_items,omitempty"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.commit)
	g.POST("/validate", h.validate)
}

func (h *CheckoutHandler) commit(c echo.Context) error {
	buyerID, ok := getBuyerIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, CheckoutResponse{Success: false, Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, CheckoutResponse{Success: false, Error: "invalid body"})
	}

	form := usecase.ShippingForm{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Ward:     req.Ward,
		District: req.District,
		City:     req.City,
		Note:     req.Note,
	}
	if errs := validator.ValidateShippingForm(form); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, CheckoutResponse{Success: false, Error: "invalid shipping form", Fields: errs})
	}

	//カートはリクエストではなくストアから読む
	lines, err := h.carts.Get(c.Request().Context(), buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, CheckoutResponse{Success: false, Error: "cart store error"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.CommitCheckout(
		c.Request().Context(),
		buyerID,
		lines,
		form,
		model.PaymentMethod(req.PaymentMethod),
		idemKey,
	)
	if err != nil {
		return writeCheckoutError(c, err)
	}

	return c.JSON(http.StatusOK, CheckoutResponse{
		Success:     true,
		Orders:      out.Orders,
		PaymentID:   out.PaymentID,
		TotalAmount: out.TotalAmount,
	})
}

// 事前チェック。参考情報で、確定の保証にはならない
func (h *CheckoutHandler) validate(c echo.Context) error {
	buyerID, ok := getBuyerIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	lines, err := h.carts.Get(c.Request().Context(), buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart store error"})
	}

	out, err := h.validator.ValidateCart(c.Request().Context(), lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 失敗はどの種類でも {success:false, error} に落とす
func writeCheckoutError(c echo.Context, err error) error {
	if sc, ok := usecase.AsStockConflictError(err); ok {
		return c.JSON(sc.HTTPStatus(), CheckoutResponse{Success: false, Error: sc.Error(), Items: sc.Items})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, CheckoutResponse{Success: false, Error: he.Message})
	}
	return c.JSON(http.StatusInternalServerError, CheckoutResponse{Success: false, Error: "internal error"})
}
