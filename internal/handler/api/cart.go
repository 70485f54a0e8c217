package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/handler"
)

// CartHandler serves the cart endpoints. The customer identity arrives in
// the X-Customer-ID header, set by the auth layer in front of this service.
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{carts: carts, logger: logger}
}

// Register mounts the cart routes on the given group.
func (h *CartHandler) Register(g *echo.Group) {
	g.GET("/cart", h.GetCart)
	g.DELETE("/cart", h.ClearCart)
	g.POST("/cart/items", h.AddItem)
	g.PATCH("/cart/items/:productID", h.UpdateItem)
	g.DELETE("/cart/items/:productID", h.RemoveItem)
}

// customerID extracts the authenticated customer identity from the request.
func customerID(c echo.Context) (string, error) {
	id := c.Request().Header.Get("X-Customer-ID")
	if id == "" {
		return "", domain.Errorf(domain.EUNAUTHORIZED, "api.customer", "Customer identity is required")
	}
	return id, nil
}

// GetCart handles GET /api/cart.
func (h *CartHandler) GetCart(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	summary, err := h.carts.GetOrCreateCart(c.Request().Context(), customer)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toCartView(summary))
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("cart.AddItem", "Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.Error(c, h.logger, err)
	}

	summary, err := h.carts.AddItem(c.Request().Context(), customer, domain.AddItemParams{
		ProductID: req.ProductID,
		Variant:   req.Variant,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toCartView(summary))
}

type updateItemRequest struct {
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity"`
}

// UpdateItem handles PATCH /api/cart/items/:productID. A quantity of zero
// or less removes the line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("cart.UpdateItem", "Invalid request body"))
	}

	summary, err := h.carts.UpdateItemQuantity(c.Request().Context(), customer, c.Param("productID"), req.Variant, req.Quantity)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toCartView(summary))
}

// RemoveItem handles DELETE /api/cart/items/:productID?variant=...
func (h *CartHandler) RemoveItem(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	summary, err := h.carts.RemoveItem(c.Request().Context(), customer, c.Param("productID"), c.QueryParam("variant"))
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toCartView(summary))
}

// ClearCart handles DELETE /api/cart.
func (h *CartHandler) ClearCart(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	summary, err := h.carts.ClearCart(c.Request().Context(), customer)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toCartView(summary))
}
