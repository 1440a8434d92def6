package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/upstream"
)

// PriceRefreshHandler keeps the cached price snapshot warm so the metered
// hot path rarely waits on the upstream.
type PriceRefreshHandler struct {
	feed   *upstream.Feed
	logger *zap.Logger
}

func NewPriceRefreshHandler(feed *upstream.Feed, logger *zap.Logger) *PriceRefreshHandler {
	return &PriceRefreshHandler{
		feed:   feed,
		logger: logger.Named("PriceRefreshHandler"),
	}
}

func (h *PriceRefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypePriceRefresh {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p PriceRefreshPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal price refresh payload", zap.Error(err))
		return fmt.Errorf("invalid payload: %v", err)
	}

	if err := h.feed.Refresh(ctx); err != nil {
		h.logger.Warn("Price snapshot refresh failed", zap.Error(err))
		return err
	}

	return nil
}
