package main

import (
	"net/http"

	"github.com/javacachava/pizza-brava-sub000/internal/service"
)

// createQuoteHandler godoc
//
//	@Summary		Price a configuration
//	@Description	Runs a product or combo configuration through the selection engine without touching a cart
//	@Tags			quotes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.ConfigurationRequest	true	"Configuration"
//	@Success		200		{object}	service.Quote
//	@Failure		400		{object}	errorEnvelope
//	@Failure		404		{object}	errorEnvelope
//	@Router			/quotes [post]
func (app *application) createQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req service.ConfigurationRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	quote, err := app.configService.Quote(r.Context(), req)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, quote); err != nil {
		app.internalServerError(w, r, err)
	}
}
