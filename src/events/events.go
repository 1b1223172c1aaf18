package events

import (
	"wavebuild/src"
	"wavebuild/src/logger"
)

// Sink receives advisory build lifecycle events. Delivery follows the
// executor's wave and sub-batch sequencing; a target's Started event
// always precedes its output lines, which precede its Completed event.
// Sinks are telemetry only: a caller that ignores them still gets a
// complete result map.
type Sink interface {
	BatchStarted(batchID string, waves [][]string)
	TargetStarted(targetID string)
	TargetOutput(targetID string, line string)
	TargetCompleted(targetID string, result *src.BuildResult)
	BatchCompleted(batchID string, results map[string]*src.BuildResult)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) BatchStarted(string, [][]string)                    {}
func (NopSink) TargetStarted(string)                               {}
func (NopSink) TargetOutput(string, string)                        {}
func (NopSink) TargetCompleted(string, *src.BuildResult)           {}
func (NopSink) BatchCompleted(string, map[string]*src.BuildResult) {}

// LogSink renders events through the logger.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) BatchStarted(batchID string, waves [][]string) {
	total := 0
	for _, wave := range waves {
		total += len(wave)
	}
	s.log.Info("batch %s: %d target(s) in %d wave(s)", batchID, total, len(waves))
}

func (s *LogSink) TargetStarted(targetID string) {
	s.log.Info("building %s", targetID)
}

func (s *LogSink) TargetOutput(targetID string, line string) {
	s.log.Debug("[%s] %s", targetID, line)
}

func (s *LogSink) TargetCompleted(targetID string, result *src.BuildResult) {
	switch result.Status {
	case src.BuildStatusFailure:
		s.log.Error("%s failed (%d diagnostic(s))", targetID, len(result.Diagnostics))
	case src.BuildStatusSkipped:
		s.log.Warn("%s skipped (upstream failure)", targetID)
	case src.BuildStatusCached:
		s.log.Info("%s cached", targetID)
	default:
		s.log.Info("%s %s in %dms", targetID, result.Status, result.DurationMs)
	}
}

func (s *LogSink) BatchCompleted(batchID string, results map[string]*src.BuildResult) {
	counts := map[src.BuildStatus]int{}
	for _, result := range results {
		counts[result.Status]++
	}
	s.log.Info("batch %s done: %d success, %d cached, %d failed, %d skipped",
		batchID,
		counts[src.BuildStatusSuccess], counts[src.BuildStatusCached],
		counts[src.BuildStatusFailure], counts[src.BuildStatusSkipped])
}
