// Package audio owns the single active decode/output session.
package audio

import "time"

// Engine drives one exclusive playback session. Load replaces whatever
// source is currently loaded; there is never more than one.
type Engine interface {
	// Load fetches and decodes the stream at url, replacing the current
	// source. The new source starts paused.
	Load(url string) error
	Play() error
	Pause()
	Resume()
	// Stop releases the current source.
	Stop()
	Seek(d time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	SetVolume(v float64)
	// SetOnFinish registers the callback fired when a source plays to
	// its natural end. Not fired on Stop or Load.
	SetOnFinish(fn func())
	Close()
}

// Noop is an Engine that produces no sound. Used when no speaker is
// available so the queue and lyric machinery keep working headless.
type Noop struct{}

func (Noop) Load(string) error          { return nil }
func (Noop) Play() error                { return nil }
func (Noop) Pause()                     {}
func (Noop) Resume()                    {}
func (Noop) Stop()                      {}
func (Noop) Seek(time.Duration) error   { return nil }
func (Noop) Position() time.Duration    { return 0 }
func (Noop) Duration() time.Duration    { return 0 }
func (Noop) SetVolume(float64)          {}
func (Noop) SetOnFinish(func())         {}
func (Noop) Close()                     {}
