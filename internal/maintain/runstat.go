package maintain

import (
	"time"

	"go.uber.org/zap"
)

type runStat struct {
	StartTime time.Time
	EndTime   time.Time

	Repositories uint
	ForksSynced  uint
	PRsSeen      uint
	Merged       uint
	NotMerged    uint
	Blocked      uint
	Expired      uint
	Failures     uint
}

func (s *runStat) LogFields() []zap.Field {
	return []zap.Field{
		zap.Duration("run_duration", s.EndTime.Sub(s.StartTime)),
		zap.Uint("run.repositories", s.Repositories),
		zap.Uint("run.forks_synced", s.ForksSynced),
		zap.Uint("run.prs_seen", s.PRsSeen),
		zap.Uint("run.prs_merged", s.Merged),
		zap.Uint("run.prs_not_merged", s.NotMerged),
		zap.Uint("run.prs_blocked", s.Blocked),
		zap.Uint("run.prs_expired", s.Expired),
		zap.Uint("run.failures", s.Failures),
	}
}
