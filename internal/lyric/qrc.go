package lyric

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	qrcWordRe = regexp.MustCompile(`\((\d+),(-?\d+)\)`)
	qrcMetaRe = regexp.MustCompile(`^\s*(作词|作曲|编曲|制作人|监制|出品|词|曲|Written by|Composed by|Lyrics by|Produced by|Arranged by)\s*[:：]`)
)

// continuationSec is the nominal duration assigned to a word whose marker
// carries a zero or negative duration.
const continuationSec = 0.1

// parseQrc parses QRC text. Each line is headed by [startMs,durationMs]
// and interleaves word text with (startMs,durationMs) markers immediately
// following each word.
func parseQrc(text string) []QrcLine {
	var lines []QrcLine
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		header := qrcHeaderRe.FindStringSubmatch(raw)
		if header == nil {
			continue
		}
		startMs, _ := strconv.ParseInt(header[1], 10, 64)
		durMs, _ := strconv.ParseInt(header[2], 10, 64)
		content := raw[len(header[0]):]

		line := assembleQrcLine(content, float64(startMs)/1000, float64(durMs)/1000)
		if dropQrcLine(line, len(lines) == 0) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func assembleQrcLine(content string, lineStart, lineDur float64) QrcLine {
	line := QrcLine{Time: lineStart}

	markers := qrcWordRe.FindAllStringSubmatchIndex(content, -1)
	if len(markers) == 0 {
		if content != "" {
			line.Words = []Word{{Text: content, Start: lineStart, Duration: lineDur}}
			line.Text = content
		}
		return line
	}

	prev := 0
	var lastEnd float64
	for _, m := range markers {
		word := content[prev:m[0]]
		prev = m[1]
		start, _ := strconv.ParseFloat(content[m[2]:m[3]], 64)
		dur, _ := strconv.ParseFloat(content[m[4]:m[5]], 64)
		start /= 1000
		dur /= 1000

		if dur <= 0 {
			// continuation marker: start where the previous word ended,
			// or at the line start when it is the first word
			if len(line.Words) > 0 {
				start = lastEnd
			} else {
				start = lineStart
			}
			dur = continuationSec
		}
		lastEnd = start + dur
		line.Words = append(line.Words, Word{Text: word, Start: start, Duration: dur})
	}

	// trailing text after the last marker follows the continuation rule
	if tail := content[prev:]; tail != "" {
		start := lineStart
		if len(line.Words) > 0 {
			start = lastEnd
		}
		line.Words = append(line.Words, Word{Text: tail, Start: start, Duration: continuationSec})
	}

	var b strings.Builder
	for _, w := range line.Words {
		b.WriteString(w.Text)
	}
	line.Text = b.String()
	return line
}

// dropQrcLine filters decorative and metadata lines out of the parsed
// result. The first-line " - " rule is a heuristic for an embedded
// title/credit line mistaken for lyrics; it can misfire on a legitimate
// early lyric containing a hyphen.
func dropQrcLine(line QrcLine, first bool) bool {
	if isJunk(line.Text) {
		return true
	}
	if qrcMetaRe.MatchString(line.Text) {
		return true
	}
	allPunct := true
	for _, w := range line.Words {
		if !isJunk(w.Text) {
			allPunct = false
			break
		}
	}
	if allPunct {
		return true
	}
	if first && strings.Contains(line.Text, " - ") && line.Time < 60 {
		return true
	}
	return false
}
