package sim

import (
	"log/slog"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// ProgressObserver logs the clock every Every steps.
type ProgressObserver struct {
	Logger *slog.Logger
	TMax   float64
	Every  int
}

func NewProgressObserver(logger *slog.Logger, tMax float64, every int) *ProgressObserver {
	if logger == nil {
		logger = slog.Default()
	}
	if every < 1 {
		every = 1
	}
	return &ProgressObserver{Logger: logger, TMax: tMax, Every: every}
}

func (p *ProgressObserver) OnStep(step int, t, dt float64, b *dynamo.Bodies) {
	if step%p.Every != 0 {
		return
	}
	p.Logger.Debug("step",
		"step", step,
		"t", t,
		"dt", dt,
		"progress", t/p.TMax,
		"bodies", b.Len(),
	)
}
