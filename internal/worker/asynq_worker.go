package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/provider"
	"github.com/holdcart/internal/queue"
	"github.com/holdcart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReservationRelease, c.handleReservationRelease)
}

func (c *Consumer) handleReservationRelease(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reservation_release_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReservationReleasePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reservation_release_unmarshal_failed", "error", err)
		return err
	}
	if payload.ReservationID == 0 {
		logger.Debugw("worker_reservation_release_skip_invalid_payload", "reservation_id", payload.ReservationID)
		return nil
	}
	if c.ReservationService == nil {
		logger.Warnw("worker_reservation_release_skip_service_nil", "reservation_id", payload.ReservationID)
		return nil
	}
	if err := c.ReservationService.Release(payload.ReservationID); err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			// 预留已被结算、移除或兜底扫描消费
			logger.Debugw("worker_reservation_release_skip_gone", "reservation_id", payload.ReservationID)
			return nil
		default:
			logger.Warnw("worker_reservation_release_failed", "reservation_id", payload.ReservationID, "error", err)
			return err
		}
	}
	return nil
}
