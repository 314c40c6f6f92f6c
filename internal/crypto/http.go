// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/cryptonotify/internal/platform/request"
	"github.com/taibuivan/cryptonotify/internal/platform/respond"
)

// PriceSource is the read side of the ticker used by [Handler].
type PriceSource interface {
	All(ctx context.Context) (json.RawMessage, error)
	Latest(ctx context.Context, currency string) (json.RawMessage, error)
}

// Handler serves /api/v1/crypto.
type Handler struct {
	prices PriceSource
}

// NewHandler constructs a price proxy [Handler].
func NewHandler(prices PriceSource) *Handler {
	return &Handler{prices: prices}
}

// Routes returns a [chi.Router] with the price routes. Only GET is routed, so
// other methods receive chi's 405.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/all", handler.all)
	router.Get("/{currency}", handler.latest)
	return router
}

/*
GET /api/v1/crypto/all.

Response:
  - 200: The upstream ticker array
  - 404: NOT_FOUND: Upstream unavailable
*/
func (handler *Handler) all(writer http.ResponseWriter, request *http.Request) {
	raw, err := handler.prices.All(request.Context())
	if err != nil {
		handler.notFound(writer, request, err, "Could not find Crypto currency prices")
		return
	}
	respond.JSON(writer, http.StatusOK, raw)
}

/*
GET /api/v1/crypto/{currency}.

Response:
  - 200: The first upstream entry for the currency
  - 404: NOT_FOUND: Unknown currency or upstream unavailable
*/
func (handler *Handler) latest(writer http.ResponseWriter, request *http.Request) {
	currency := requestutil.Param(request, "currency")

	raw, err := handler.prices.Latest(request.Context(), currency)
	if err != nil {
		handler.notFound(writer, request, err, fmt.Sprintf("Could not find price for %s", currency))
		return
	}
	respond.JSON(writer, http.StatusOK, raw)
}

func (handler *Handler) notFound(writer http.ResponseWriter, request *http.Request, cause error, message string) {
	ctx := request.Context()
	ctxutil.GetLogger(ctx).WarnContext(ctx, "ticker_lookup_failed", slog.Any("error", cause))
	respond.Error(writer, request, apperr.NotFoundMessage(message).WithCause(cause))
}
