package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Product     *handler.ProductHandler
	Cart        *handler.CartHandler
	Checkout    *handler.CheckoutHandler
	Order       *handler.OrderHandler
	SellerOrder *handler.SellerOrderHandler
}

func Start(cfg config.Config, logger zerolog.Logger, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	RegisterRoutes(e, cfg, h)

	return e.Start(":" + cfg.Port)
}
