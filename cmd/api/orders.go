package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// getOrderHandler godoc
//
//	@Summary		Get order
//	@Tags			orders
//	@Produce		json
//	@Param			order_id	path		string	true	"Order ID"
//	@Success		200			{object}	domain.Order
//	@Failure		404			{object}	errorEnvelope
//	@Router			/orders/{order_id} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := app.orderService.GetOrder(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getOrderAuditHandler godoc
//
//	@Summary		Get order status history
//	@Description	Status changes recorded for the order, newest first
//	@Tags			orders
//	@Produce		json
//	@Param			order_id	path		string	true	"Order ID"
//	@Param			limit		query		int		false	"Max records (default 50, max 200)"
//	@Success		200			{array}		domain.OrderStatusAudit
//	@Failure		500			{object}	errorEnvelope
//	@Router			/orders/{order_id}/audit [get]
func (app *application) getOrderAuditHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	audits, err := app.auditService.GetOrderAudit(r.Context(), chi.URLParam(r, "order_id"), limit)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, audits); err != nil {
		app.internalServerError(w, r, err)
	}
}
