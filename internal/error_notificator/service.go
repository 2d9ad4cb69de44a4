package error_notificator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

// Service fires alerts in the background so a slow or failing alert channel
// never delays the HTTP response.
type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if infra == nil {
		infra = Noop{}
	}
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(_ context.Context, err error, details string) error {
	if _, ok := s.infra.(Noop); ok {
		return nil
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
			s.log.Warn("error alert not delivered", zap.Error(sendErr))
		}
	}()
	return nil
}
