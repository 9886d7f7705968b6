package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Reclaimer is the scheduled half of stale-lock enforcement. It sweeps the
// canonical document on a fixed interval so abandoned cards are reclaimed
// even when no client is connected to crowdsource the sweep.
type Reclaimer struct {
	cron     *cron.Cron
	engine   *GameEngine
	schedule string
}

func NewReclaimer(engine *GameEngine, interval string) *Reclaimer {
	return &Reclaimer{
		cron:     cron.New(),
		engine:   engine,
		schedule: fmt.Sprintf("@every %s", interval),
	}
}

func (r *Reclaimer) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		n, err := r.engine.SweepStaleCards(ctx)
		if err != nil {
			if errors.Is(err, ErrGameNotFound) {
				return
			}
			log.WithError(err).Error("Scheduled stale sweep failed")
			return
		}
		if n > 0 {
			log.WithField("reclaimed", n).Info("Scheduled sweep reclaimed stale cards")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule stale sweep: %v", err)
	}

	r.cron.Start()
	log.WithField("interval", r.schedule).Info("Stale-lock reclaimer started")
	return nil
}

func (r *Reclaimer) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("Stale-lock reclaimer stopped")
}
