package lpfile

import (
	"log/slog"
	"time"
)

// Section identifies a part of the LP file.
type Section int

// Sections in output order.
const (
	SectionObjective Section = iota
	SectionConstraints
	SectionBounds
	SectionBinaries
)

// String returns the section name.
func (s Section) String() string {
	switch s {
	case SectionObjective:
		return "objective"
	case SectionConstraints:
		return "constraints"
	case SectionBounds:
		return "bounds"
	case SectionBinaries:
		return "binaries"
	default:
		return "unknown"
	}
}

// SectionStats describes a written section.
type SectionStats struct {
	Bytes    int64         // Bytes written, headers included
	Lines    int           // Non-empty entries written (terms, constraints, bounds, binaries)
	Duration time.Duration // Formatting and writing time
}

// Observer is notified around every section. Implementations must not write to the sink.
type Observer interface {
	SectionStart(s Section)
	SectionDone(s Section, stats SectionStats, err error)
}

// Observers fans notifications out to several observers.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) SectionStart(s Section) {
	for _, o := range m {
		o.SectionStart(s)
	}
}

func (m multiObserver) SectionDone(s Section, stats SectionStats, err error) {
	for _, o := range m {
		o.SectionDone(s, stats, err)
	}
}

// LogObserver logs section timings.
type LogObserver struct {
	Logger *slog.Logger
}

// SectionStart implements Observer.
func (l LogObserver) SectionStart(s Section) {
	l.Logger.Debug("writing section", "section", s.String())
}

// SectionDone implements Observer.
func (l LogObserver) SectionDone(s Section, stats SectionStats, err error) {
	if err != nil {
		l.Logger.Error("section failed",
			"section", s.String(),
			"error", err,
		)
		return
	}
	l.Logger.Debug("section written",
		"section", s.String(),
		"bytes", stats.Bytes,
		"lines", stats.Lines,
		"duration", stats.Duration,
	)
}
