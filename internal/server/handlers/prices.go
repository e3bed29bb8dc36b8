package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/core/engine"
	"github.com/pricelens/pricelens/internal/core/store"
	apperrors "github.com/pricelens/pricelens/internal/errors"
)

const maxHistoryLimit = 500

// Pricer runs a price aggregation for the named items.
type Pricer interface {
	Price(ctx context.Context, names ...string) (*core.PriceRun, error)
}

// HistoryLister reads stored price snapshots.
type HistoryLister interface {
	ListSnapshots(ctx context.Context, q store.SnapshotQuery) ([]core.PriceSnapshot, error)
}

// PricesHandler serves GET /v1/prices. Repeated item parameters select items;
// without any, every configured item is priced.
func PricesHandler(pricer Pricer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricer == nil {
			respondWithError(w, r, apperrors.NewInternalError("pricing service not configured"))
			return
		}

		var names []string
		for _, name := range r.URL.Query()["item"] {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}

		run, err := pricer.Price(r.Context(), names...)
		if err != nil {
			respondWithError(w, r, priceError(r.Context(), err))
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

// HistoryHandler serves GET /v1/history.
func HistoryHandler(history HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			respondWithError(w, r, apperrors.NewInternalError("snapshot store not configured"))
			return
		}

		params := r.URL.Query()
		query := store.SnapshotQuery{
			Item:   params.Get("item"),
			League: params.Get("league"),
			RunID:  params.Get("run_id"),
		}
		if raw := strings.TrimSpace(params.Get("limit")); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 || limit > maxHistoryLimit {
				respondWithError(w, r, apperrors.NewInvalidInputError("limit must be between 1 and 500"))
				return
			}
			query.Limit = limit
		}

		snapshots, err := history.ListSnapshots(r.Context(), query)
		if err != nil {
			respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to read price history"))
			return
		}

		writeJSON(w, http.StatusOK, snapshots)
	}
}

func priceError(ctx context.Context, err error) error {
	var unknown *engine.UnknownItemError
	if errors.As(err, &unknown) {
		return apperrors.NewNotFoundError(unknown.Error())
	}
	if errors.Is(err, engine.ErrNoItems) {
		return apperrors.NewNotFoundError("no items configured")
	}
	return apperrors.FromError(ctx, err, "price run failed")
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
