package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ncastellanos/till-service/internal/domain/pos"
	"github.com/ncastellanos/till-service/internal/infrastructure/http/response"
	"github.com/ncastellanos/till-service/internal/pkg/logger"
)

type CartHandler struct {
	cart *pos.Cart
	log  *logger.Logger
}

func NewCartHandler(cart *pos.Cart, log *logger.Logger) *CartHandler {
	return &CartHandler{
		cart: cart,
		log:  log,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type cartItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Items []cartItemView `json:"items"`
	Total string         `json:"total"`
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	errors := make(map[string]string)
	if req.ProductID == "" {
		errors["product_id"] = "product_id is required"
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		errors["price"] = "price must be a non-negative decimal"
	}
	if len(errors) > 0 {
		response.WriteValidationError(w, "Validation failed", errors)
		return
	}

	h.cart.AddItem(pos.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     price,
		Quantity:  req.Quantity,
	})

	response.WriteSuccess(w, h.view())
}

func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request, productID string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	h.cart.RemoveItem(productID)
	response.WriteSuccess(w, h.view())
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	response.WriteSuccess(w, h.view())
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	h.cart.Clear()
	response.WriteSuccess(w, h.view())
}

func (h *CartHandler) view() cartView {
	items := h.cart.Items()
	view := cartView{
		Items: make([]cartItemView, 0, len(items)),
		Total: h.cart.GrossTotal().String(),
	}
	for _, item := range items {
		view.Items = append(view.Items, cartItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().String(),
		})
	}
	return view
}
