//go:build !((linux && cgo) || windows || darwin)

package audio

import "errors"

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = false

func NewSpeaker() (Engine, error) {
	return nil, errors.New("audio: playback not supported in this build")
}
