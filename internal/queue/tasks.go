package queue

import (
	"encoding/json"

	"github.com/holdcart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReservationRelease 库存预留到期释放任务
	TaskReservationRelease = constants.TaskReservationRelease
)

// ReservationReleasePayload 预留释放任务载荷
type ReservationReleasePayload struct {
	ReservationID uint `json:"reservation_id"`
}

// NewReservationReleaseTask 创建预留释放任务
func NewReservationReleaseTask(payload ReservationReleasePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationRelease, body), nil
}
