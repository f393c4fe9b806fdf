package scheduler

import (
	"time"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/domain"
	"bus_booking/internal/models"
)

// Sweeper periodically promotes overdue SCHEDULED departures to
// DELAYED. A departure is overdue once its departure time is at least
// the delay threshold in the past. Each owns its own ticker goroutine;
// run failures are logged and the next tick tries again.
type Sweeper struct {
	db        *gorm.DB
	interval  time.Duration
	threshold time.Duration
	stop      chan struct{}
	done      chan struct{}
}

func NewSweeper(db *gorm.DB, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		db:        db,
		interval:  interval,
		threshold: threshold,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop. Call Stop to end it.
func (s *Sweeper) Start() {
	logrus.WithFields(logrus.Fields{
		"interval":  s.interval.String(),
		"threshold": s.threshold.String(),
	}).Info("delay sweeper started")

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce(time.Now().UTC())
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep loop and waits for any in-flight run to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
	logrus.Info("delay sweeper stopped")
}

func (s *Sweeper) runOnce(now time.Time) {
	if err := s.sweep(now); err != nil {
		logrus.WithError(err).Error("delay sweep failed")
	}
}

// sweep marks every overdue SCHEDULED departure DELAYED in one
// transaction.
func (s *Sweeper) sweep(now time.Time) error {
	cutoff := now.Add(-s.threshold)

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var ids []uint
	if err := tx.Model(&models.Departure{}).
		Where("status = ?", domain.DepartureScheduled).
		Where("departure_time <= ?", cutoff).
		Pluck("id", &ids).Error; err != nil {
		tx.Rollback()
		return err
	}

	if len(ids) == 0 {
		if err := tx.Commit().Error; err != nil {
			return err
		}
		logrus.Debug("delay sweep found no overdue departures")
		return nil
	}

	if err := tx.Model(&models.Departure{}).
		Where("id IN ?", ids).
		Update("status", domain.DepartureDelayed).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"count": len(ids),
		"ids":   ids,
	}).Info("overdue departures marked delayed")
	return nil
}
