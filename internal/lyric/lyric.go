// Package lyric parses time-tagged lyric text into a structure suitable
// for karaoke-style rendering. Two formats are supported: LRC (one
// timestamp per line) and QRC (per-word start/duration markers).
package lyric

import (
	"regexp"
	"strings"
	"unicode"
)

// Line is a single LRC lyric line.
type Line struct {
	Time        int64  `json:"time"` // milliseconds
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
}

// Word is a single karaoke word inside a QRC line.
type Word struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// QrcLine is a single QRC lyric line with per-word timing.
type QrcLine struct {
	Time        float64 `json:"time"` // seconds
	Words       []Word  `json:"words"`
	Text        string  `json:"text"`
	Translation string  `json:"translation,omitempty"`
}

// Lyric is a parsed lyric track. Either Lines or QrcLines is populated
// depending on the detected format.
type Lyric struct {
	Lines    []Line    `json:"lines"`
	QrcLines []QrcLine `json:"qrcLines,omitempty"`
	IsQrc    bool      `json:"isQrc"`

	cursor int // last resolved line index, see LineAt
}

var (
	qrcHeaderRe = regexp.MustCompile(`^\[(\d+),(\d+)\]`)
	lrcProbeRe  = regexp.MustCompile(`^\[\d+:\d+`)
)

// Parse parses lyric text, detecting LRC vs QRC, and merges an optional
// translation track (always LRC-shaped) into the result.
func Parse(text, translation string) *Lyric {
	l := &Lyric{cursor: -1}
	if detectQrc(text) {
		l.IsQrc = true
		l.QrcLines = parseQrc(text)
	} else {
		l.Lines = parseLrc(text)
	}
	if translation != "" {
		l.mergeTranslation(parseLrc(translation))
	}
	return l
}

// detectQrc samples the first few non-blank lines and classifies the text
// as QRC only when QRC line headers strictly outnumber LRC timestamps.
// The majority vote avoids misclassifying a QRC file that embeds a single
// LRC-looking translation line.
func detectQrc(text string) bool {
	qrc, lrc, seen := 0, 0, 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if qrcHeaderRe.MatchString(line) {
			qrc++
		} else if lrcProbeRe.MatchString(line) {
			lrc++
		}
		seen++
		if seen >= 10 {
			break
		}
	}
	return qrc > lrc
}

const mergeWindowMs = 500

// mergeTranslation attaches each translation line to the primary line with
// the nearest timestamp within a 500ms window. Pure-symbol translations
// are discarded rather than attached.
func (l *Lyric) mergeTranslation(trans []Line) {
	match := func(ms int64) (string, bool) {
		best, found := int64(mergeWindowMs+1), ""
		for _, t := range trans {
			d := t.Time - ms
			if d < 0 {
				d = -d
			}
			if d <= mergeWindowMs && d < best {
				best, found = d, t.Text
			}
		}
		return found, found != ""
	}

	if l.IsQrc {
		for i := range l.QrcLines {
			if t, ok := match(int64(l.QrcLines[i].Time * 1000)); ok {
				l.QrcLines[i].Translation = t
			}
		}
		return
	}
	for i := range l.Lines {
		if t, ok := match(l.Lines[i].Time); ok {
			l.Lines[i].Translation = t
		}
	}
}

// Len returns the number of parsed lines.
func (l *Lyric) Len() int {
	if l.IsQrc {
		return len(l.QrcLines)
	}
	return len(l.Lines)
}

func (l *Lyric) timeMs(i int) int64 {
	if l.IsQrc {
		return int64(l.QrcLines[i].Time * 1000)
	}
	return l.Lines[i].Time
}

// LineAt returns the index of the last line whose timestamp is <= now
// (in milliseconds), or -1 before the first line. The previous result is
// cached so that monotonically increasing playback time only scans
// forward a step at a time; a backward jump falls back to a full scan.
func (l *Lyric) LineAt(nowMs int64) int {
	n := l.Len()
	if n == 0 {
		return -1
	}

	i := l.cursor
	if i < -1 || i >= n {
		i = -1
	}
	if i >= 0 && l.timeMs(i) > nowMs {
		// seek backward, rescan from the start
		i = -1
	}
	for i+1 < n && l.timeMs(i+1) <= nowMs {
		i++
	}
	l.cursor = i
	return i
}

// isJunk reports whether s carries no lyric content, i.e. it reduces to
// symbols, punctuation and whitespace only.
func isJunk(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
