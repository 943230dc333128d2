package main

import (
	"net/http"

	"github.com/go-chi/chi"
)

// getProductHandler godoc
//
//	@Summary		Get product by ID
//	@Description	Get a catalog product
//	@Tags			catalog
//	@Produce		json
//	@Param			product_id	path		string	true	"Product ID"
//	@Success		200			{object}	domain.Product
//	@Failure		404			{object}	errorEnvelope
//	@Failure		500			{object}	errorEnvelope
//	@Router			/products/{product_id} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := app.catalogRepo.GetProduct(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getComboHandler godoc
//
//	@Summary		Get combo definition
//	@Description	Get a combo definition with its slots
//	@Tags			catalog
//	@Produce		json
//	@Param			combo_id	path		string	true	"Combo ID"
//	@Success		200			{object}	domain.ComboDefinition
//	@Failure		404			{object}	errorEnvelope
//	@Failure		500			{object}	errorEnvelope
//	@Router			/combos/{combo_id} [get]
func (app *application) getComboHandler(w http.ResponseWriter, r *http.Request) {
	combo, err := app.catalogRepo.GetComboDefinition(r.Context(), chi.URLParam(r, "combo_id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, combo); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listIngredientsHandler godoc
//
//	@Summary		List ingredients
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}		domain.Ingredient
//	@Failure		500	{object}	errorEnvelope
//	@Router			/ingredients [get]
func (app *application) listIngredientsHandler(w http.ResponseWriter, r *http.Request) {
	ingredients, err := app.catalogRepo.ListIngredients(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, ingredients); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listFlavorsHandler godoc
//
//	@Summary		List variant groups
//	@Description	Flavor and size groups used by variant products
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}		domain.VariantGroup
//	@Failure		500	{object}	errorEnvelope
//	@Router			/flavors [get]
func (app *application) listFlavorsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := app.catalogRepo.ListFlavors(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, groups); err != nil {
		app.internalServerError(w, r, err)
	}
}
