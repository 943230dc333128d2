package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
)

const boardHeartbeat = 15 * time.Second

// getBoardHandler godoc
//
//	@Summary		Kitchen board
//	@Description	Pending, preparing and ready orders, oldest first
//	@Tags			kitchen
//	@Produce		json
//	@Success		200	{object}	kitchen.Snapshot
//	@Router			/kitchen/board [get]
func (app *application) getBoardHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.kitchenService.Board()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// streamBoardHandler godoc
//
//	@Summary		Live kitchen board
//	@Description	Server-sent events; every event carries a full board snapshot
//	@Tags			kitchen
//	@Produce		text/event-stream
//	@Success		200	{object}	kitchen.Snapshot
//	@Router			/kitchen/board/stream [get]
func (app *application) streamBoardHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.internalServerError(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sub := app.kitchenService.Subscribe()
	defer sub.Close()

	_, _ = fmt.Fprint(w, "retry: 2000\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(boardHeartbeat)
	defer heartbeat.Stop()

	actor := getActorFromCtx(r)
	app.logger.Infow("board stream opened", "actor_id", actor.ID)
	defer app.logger.Infow("board stream closed", "actor_id", actor.ID)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-sub.Updates():
			if !ok {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				app.logger.Errorw("failed to encode board snapshot", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: board\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// advanceOrderHandler godoc
//
//	@Summary		Advance an order
//	@Description	Moves the order one step: pending, preparing, ready, delivered. Delivered orders are returned unchanged.
//	@Tags			kitchen
//	@Produce		json
//	@Param			order_id	path		string	true	"Order ID"
//	@Success		200			{object}	domain.Order
//	@Failure		404			{object}	errorEnvelope
//	@Failure		409			{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/kitchen/orders/{order_id}/advance [post]
func (app *application) advanceOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := app.kitchenService.Advance(r.Context(), chi.URLParam(r, "order_id"), getActorFromCtx(r))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}
