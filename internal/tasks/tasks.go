package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypePriceRefresh = "prices:refresh"
)

type PriceRefreshPayload struct{}

func NewPriceRefreshTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(PriceRefreshPayload{})
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Minute)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypePriceRefresh, payloadBytes, allOpts...), nil
}
