package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/service"
)

type AddProductRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// UpdateCartItemRequest sets the quantity outright or applies a delta.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Delta    int  `json:"delta,omitempty"`
}

type CheckoutRequest struct {
	OrderType    string `json:"order_type" validate:"required,oneof=mesa llevar pedido"`
	TableID      string `json:"table_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// createCartHandler godoc
//
//	@Summary		Open a cart
//	@Tags			carts
//	@Produce		json
//	@Success		201	{object}	cart.Session
//	@Failure		500	{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/carts [post]
func (app *application) createCartHandler(w http.ResponseWriter, r *http.Request) {
	session, err := app.cartService.Create(r.Context(), getActorFromCtx(r))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCartHandler godoc
//
//	@Summary		Get cart
//	@Tags			carts
//	@Produce		json
//	@Param			cart_id	path		string	true	"Cart ID"
//	@Success		200		{object}	cart.Session
//	@Failure		404		{object}	errorEnvelope
//	@Router			/carts/{cart_id} [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	session, err := app.cartService.Get(r.Context(), chi.URLParam(r, "cart_id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addProductHandler godoc
//
//	@Summary		Add a standard product
//	@Description	Adds a plain line or bumps an identical plain line
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			cart_id	path		string				true	"Cart ID"
//	@Param			request	body		AddProductRequest	true	"Product"
//	@Success		200		{object}	cart.Session
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Failure		409		{object}	errorEnvelope
//	@Router			/carts/{cart_id}/products [post]
func (app *application) addProductHandler(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	session, err := app.cartService.AddProduct(r.Context(), chi.URLParam(r, "cart_id"), req.ProductID, req.Quantity)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addConfiguredHandler godoc
//
//	@Summary		Add a configured product or combo
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			cart_id	path		string							true	"Cart ID"
//	@Param			request	body		service.ConfigurationRequest	true	"Configuration"
//	@Success		200		{object}	cart.Session
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Failure		409		{object}	errorEnvelope
//	@Router			/carts/{cart_id}/configured [post]
func (app *application) addConfiguredHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ConfigurationRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, err := app.cartService.AddConfigured(r.Context(), chi.URLParam(r, "cart_id"), req)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCartItemHandler godoc
//
//	@Summary		Change a line quantity
//	@Description	Either sets quantity or applies delta; a result below one is ignored
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			cart_id	path		string					true	"Cart ID"
//	@Param			index	path		int						true	"Line index"
//	@Param			request	body		UpdateCartItemRequest	true	"Change"
//	@Success		200		{object}	cart.Session
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Router			/carts/{cart_id}/items/{index} [patch]
func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidIndex)
		return
	}

	var req UpdateCartItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cartID := chi.URLParam(r, "cart_id")
	var (
		session   *cart.Session
		updateErr error
	)
	if req.Quantity != nil {
		session, updateErr = app.cartService.SetQuantity(r.Context(), cartID, index, *req.Quantity)
	} else {
		session, updateErr = app.cartService.UpdateQuantity(r.Context(), cartID, index, req.Delta)
	}
	if updateErr != nil {
		app.errorResponse(w, r, updateErr)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// removeCartItemHandler godoc
//
//	@Summary		Remove a line
//	@Tags			carts
//	@Produce		json
//	@Param			cart_id	path		string	true	"Cart ID"
//	@Param			index	path		int		true	"Line index"
//	@Success		200		{object}	cart.Session
//	@Failure		404		{object}	errorEnvelope
//	@Router			/carts/{cart_id}/items/{index} [delete]
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		app.badRequestResponse(w, r, ErrInvalidIndex)
		return
	}

	session, err := app.cartService.RemoveLine(r.Context(), chi.URLParam(r, "cart_id"), index)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// clearCartHandler godoc
//
//	@Summary		Clear the cart
//	@Description	Requires confirm=true
//	@Tags			carts
//	@Produce		json
//	@Param			cart_id	path		string	true	"Cart ID"
//	@Param			confirm	query		bool	true	"Confirm clearing"
//	@Success		200		{object}	cart.Session
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Router			/carts/{cart_id} [delete]
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	session, err := app.cartService.Clear(r.Context(), chi.URLParam(r, "cart_id"), confirm)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// checkoutHandler godoc
//
//	@Summary		Submit the cart as an order
//	@Description	Validates order type metadata, assigns the day's next order number and clears the cart. On failure the cart is kept.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			cart_id	path		string			true	"Cart ID"
//	@Param			request	body		CheckoutRequest	true	"Order type and metadata"
//	@Success		201		{object}	domain.Order
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Failure		503		{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/carts/{cart_id}/checkout [post]
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	meta := domain.OrderMeta{
		TableID:      req.TableID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
	}

	order, err := app.orderService.Checkout(r.Context(), chi.URLParam(r, "cart_id"), domain.OrderType(req.OrderType), meta, getActorFromCtx(r))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, order); err != nil {
		app.internalServerError(w, r, err)
	}
}
