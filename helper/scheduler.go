package helper

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type Expirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

// StartHoldExpiryScheduler releases bookings older than ttl every interval.
// The caller stops it with Shutdown.
func StartHoldExpiryScheduler(expirer Expirer, ttl, interval time.Duration, log *zap.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			n, err := expirer.ExpireStale(ctx, ttl)
			if err != nil {
				log.Error("[CRON] hold expiry failed", zap.Int("expired", n), zap.Error(err))
			}
		}),
		gocron.WithName("hold-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return nil, err
	}

	s.Start()
	log.Info("hold expiry scheduler started", zap.Duration("ttl", ttl), zap.Duration("every", interval))
	return s, nil
}
