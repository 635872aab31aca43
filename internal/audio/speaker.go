//go:build (linux && cgo) || windows || darwin

package audio

import (
	"bytes"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/imroc/req/v3"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// Speaker is the beep-backed Engine. All sources are resampled to one
// fixed output rate so the speaker is initialized exactly once.
type Speaker struct {
	mu sync.Mutex

	inited   bool
	sr       beep.SampleRate
	client   *req.Client
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	volume   float64
	onFinish func()
	session  int
}

func NewSpeaker() (*Speaker, error) {
	return &Speaker{
		sr:     beep.SampleRate(44100),
		volume: 1,
		client: req.C().SetTimeout(2 * time.Minute),
	}, nil
}

func (p *Speaker) Load(url string) error {
	resp, err := p.client.R().Get(url)
	if err != nil {
		return err
	}
	data := resp.Bytes()

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.inited {
		if err := speaker.Init(p.sr, p.sr.N(time.Second/10)); err != nil {
			streamer.Close()
			return err
		}
		p.inited = true
	}

	speaker.Clear()
	if p.streamer != nil {
		p.streamer.Close()
	}
	p.streamer = streamer
	p.format = format
	p.session++
	sess := p.session

	resampled := beep.Resample(4, format.SampleRate, p.sr, streamer)
	p.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	p.vol = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolumeLocked()

	speaker.Play(beep.Seq(p.vol, beep.Callback(func() {
		// runs on the speaker goroutine, hand off before locking
		go p.finished(sess)
	})))
	return nil
}

func (p *Speaker) finished(sess int) {
	p.mu.Lock()
	fn := p.onFinish
	current := sess == p.session
	p.mu.Unlock()
	if current && fn != nil {
		fn()
	}
}

func (p *Speaker) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return errors.New("audio: no source loaded")
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (p *Speaker) Pause() { p.setPaused(true) }

func (p *Speaker) Resume() { p.setPaused(false) }

func (p *Speaker) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Speaker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session++
	if p.inited {
		speaker.Clear()
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.vol = nil
}

func (p *Speaker) Seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return nil
	}
	n := p.format.SampleRate.N(d)
	if n < 0 {
		n = 0
	}
	if max := p.streamer.Len(); n >= max {
		n = max - 1
	}
	speaker.Lock()
	err := p.streamer.Seek(n)
	speaker.Unlock()
	return err
}

func (p *Speaker) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n)
}

func (p *Speaker) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

func (p *Speaker) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	if p.vol == nil {
		return
	}
	speaker.Lock()
	p.applyVolumeLocked()
	speaker.Unlock()
}

// applyVolumeLocked maps the linear [0,1] volume onto the exponential
// scale beep's Volume effect expects.
func (p *Speaker) applyVolumeLocked() {
	if p.vol == nil {
		return
	}
	if p.volume <= 0 {
		p.vol.Silent = true
		return
	}
	p.vol.Silent = false
	p.vol.Volume = math.Log2(p.volume)
}

func (p *Speaker) SetOnFinish(fn func()) {
	p.mu.Lock()
	p.onFinish = fn
	p.mu.Unlock()
}

func (p *Speaker) Close() {
	p.Stop()
	p.mu.Lock()
	if p.inited {
		speaker.Close()
		p.inited = false
	}
	p.mu.Unlock()
}
