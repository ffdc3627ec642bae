package worker

import (
	"context"
	"errors"
	"time"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/constants"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建异步队列服务。队列关闭时退化为仅兜底扫描，
// 预留到期完全由周期扫描释放。
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:          "worker",
		consumer:      consumer,
		sweepInterval: resolveSweepInterval(cfg),
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer.ReservationService != nil {
		go s.runReservationSweepLoop(ctx)
	}
	if s.server == nil || s.mux == nil {
		// 仅兜底扫描模式，阻塞至停机
		logger.Infow("worker_sweep_only", "reason", "queue_disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runReservationSweepLoop 周期释放已到期预留。延迟任务丢失或
// 投递失败时由该兜底扫描接管，重启后依然安全。
func (s *Service) runReservationSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ReservationService == nil {
		return
	}
	runOnce := func() {
		released, err := s.consumer.ReservationService.ReleaseDue(time.Now(), 0)
		if err != nil {
			logger.Warnw("worker_reservation_sweep_failed", "error", err)
			return
		}
		if released > 0 {
			logger.Infow("worker_reservation_sweep_released", "count", released)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func resolveSweepInterval(cfg *config.Config) time.Duration {
	seconds := constants.ReservationSweepIntervalSecondsDefault
	if cfg != nil && cfg.Reservation.SweepIntervalSeconds > 0 {
		seconds = cfg.Reservation.SweepIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}
