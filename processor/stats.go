package processor

import (
	"sync"
	"time"

	"github.com/streamingfast/dmetrics"
	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

// Stats periodically logs the save rate and durations.
type Stats struct {
	*shutter.Shutter

	saveRate *dmetrics.AvgRatePromCounter

	lock            sync.Mutex
	avgSaveDuration *dmetrics.AvgDurationCounter
	lastSave        time.Time

	logger *zap.Logger
}

func NewStats(logger *zap.Logger) *Stats {
	return &Stats{
		Shutter: shutter.New(),

		saveRate:        dmetrics.MustNewAvgRateFromPromCounter(SaveCount, 1*time.Second, 30*time.Second, "save"),
		avgSaveDuration: dmetrics.NewAvgDurationCounter(30*time.Second, time.Second, "save dur"),
		logger:          logger,
	}
}

func (s *Stats) RecordSave(elapsed time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.avgSaveDuration.AddDuration(elapsed)
	s.lastSave = time.Now()
}

func (s *Stats) Start(each time.Duration) {
	s.logger.Info("starting stats service", zap.Duration("runs_each", each))

	if s.IsTerminating() || s.IsTerminated() {
		panic("already shutdown, refusing to start again")
	}

	go func() {
		ticker := time.NewTicker(each)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.logger.Info("form processor stats", s.fields()...)
			case <-s.Terminating():
				return
			}
		}
	}()
}

func (s *Stats) Close() {
	s.Shutdown(nil)
}

func (s *Stats) fields() []zap.Field {
	s.lock.Lock()
	defer s.lock.Unlock()

	fields := []zap.Field{
		zap.Stringer("save_rate", s.saveRate),
		zap.Duration("avg_save_duration", s.avgSaveDuration.Average()),
	}

	if s.lastSave.IsZero() {
		fields = append(fields, zap.String("last_save", "None"))
	} else {
		fields = append(fields, zap.Time("last_save", s.lastSave))
	}
	return fields
}
