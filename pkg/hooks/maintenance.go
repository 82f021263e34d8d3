package hooks

import (
	"context"
	"strconv"
	"time"

	"github.com/adhocore/gronx"
)

// metaLastSweep records when the last retention sweep completed, in ms epoch.
const metaLastSweep = "last_sweep_ms"

// runMaintenance runs the retention sweep when the configured schedule says
// one is due. No daemon exists, so this piggybacks on session end. Failures
// are logged and swallowed; maintenance never blocks the hook outcome.
func (s *Service) runMaintenance(ctx context.Context) {
	if s.cfg.RetentionDays <= 0 || s.cfg.MaintenanceSchedule == "" {
		return
	}

	due, err := gronx.PrevTickBefore(s.cfg.MaintenanceSchedule, time.Now(), true)
	if err != nil {
		s.log.Warnf("invalid maintenance schedule %q: %v", s.cfg.MaintenanceSchedule, err)
		return
	}

	lastRaw, err := s.store.GetMeta(ctx, metaLastSweep)
	if err != nil {
		s.log.Warnf("read last sweep time: %v", err)
		return
	}
	last, _ := strconv.ParseInt(lastRaw, 10, 64)
	if last >= due.UnixMilli() {
		return
	}

	removed, err := s.store.Sweep(ctx, s.cfg.RetentionDays)
	if err != nil {
		s.log.Warnf("retention sweep failed: %v", err)
		return
	}
	if err := s.store.SetMeta(ctx, metaLastSweep, strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
		s.log.Warnf("record sweep time: %v", err)
		return
	}
	if removed > 0 {
		s.log.Infof("retention sweep removed %d observations older than %d days", removed, s.cfg.RetentionDays)
	}
}
