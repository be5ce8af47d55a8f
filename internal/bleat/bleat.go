// vi: sw=4 ts=4:

/*

	Mnemonic:	bleat
	Abstract:	A small leveled-logging facade, backed by zap, in the spirit of
				the verbosity-gated "sheep" loggers each manager in this
				controller carries (am_sheep, rm_sheep, fq_sheep, ...): call
				Baa(level, format, args...) and the message is emitted only if
				the sheep's current volume is at or above level. Unlike the
				ancestor, the plumbing underneath is a real structured logger
				so operators get JSON output, log levels that compose with the
				rest of the Go ecosystem's tooling, and sane defaults in
				production.
	Date:		29 July 2026
*/

package bleat

import (
	"fmt"

	"go.uber.org/zap"
)

// Sheep is a named, leveled logger. Level 0 is always emitted (it maps to
// zap's Error level); increasing levels are progressively more verbose
// (1 is Warn, 2 is Info, and 3 and every level above it is Debug).
type Sheep struct {
	name    string
	volume  uint
	log     *zap.SugaredLogger
	parent  *Sheep
	kids    []*Sheep
}

// Mk builds a new sheep with the given starting volume, logging through l.
func Mk(l *zap.Logger, volume uint) *Sheep {
	if l == nil {
		l, _ = zap.NewProduction()
	}
	return &Sheep{log: l.Sugar(), volume: volume}
}

// SetPrefix names the sheep; the name is attached to every message it bleats.
func (s *Sheep) SetPrefix(name string) {
	if s == nil {
		return
	}
	s.name = name
}

// SetLevel adjusts the sheep's current volume.
func (s *Sheep) SetLevel(v uint) {
	if s == nil {
		return
	}
	s.volume = v
}

// Level returns the sheep's current volume.
func (s *Sheep) Level() uint {
	if s == nil {
		return 0
	}
	return s.volume
}

// WouldBaa reports whether a message at the given level would currently be
// emitted, letting a caller skip expensive formatting when it wouldn't.
func (s *Sheep) WouldBaa(level uint) bool {
	if s == nil {
		return false
	}
	return level <= s.volume
}

// AddChild registers a child sheep: adjusting this sheep's volume with
// SetMasterLevel propagates the same volume to every child, mirroring the way a
// master bleater controls its whole flock.
func (s *Sheep) AddChild(c *Sheep) {
	if s == nil || c == nil {
		return
	}
	c.parent = s
	s.kids = append(s.kids, c)
}

// SetMasterLevel sets this sheep's volume and every descendant's volume to v.
func (s *Sheep) SetMasterLevel(v uint) {
	if s == nil {
		return
	}
	s.SetLevel(v)
	for _, k := range s.kids {
		k.SetMasterLevel(v)
	}
}

// Baa emits a message at level if the sheep's volume allows it. Level 0
// always logs (and logs at error severity); everything else logs at a
// severity that falls off with level.
func (s *Sheep) Baa(level uint, format string, args ...interface{}) {
	if s == nil || !s.WouldBaa(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if s.name != "" {
		msg = s.name + ": " + msg
	}

	switch {
	case level == 0:
		s.log.Error(msg)
	case level == 1:
		s.log.Warn(msg)
	case level == 2:
		s.log.Info(msg)
	default:
		s.log.Debug(msg)
	}
}
