package lyric

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var lrcTimeRe = regexp.MustCompile(`\[(\d+):(\d+)(?:[.:](\d+))?\]`)

// parseLrc parses LRC text. A source line may carry several bracketed
// timestamps; one output line is emitted per timestamp, all sharing the
// line's text. Lines that are empty or pure decoration after stripping
// the tags are discarded.
func parseLrc(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		tags := lrcTimeRe.FindAllStringSubmatch(raw, -1)
		if len(tags) == 0 {
			continue
		}
		content := strings.TrimSpace(lrcTimeRe.ReplaceAllString(raw, ""))
		if isJunk(content) {
			continue
		}

		for _, tag := range tags {
			lines = append(lines, Line{Time: lrcTime(tag), Text: content})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Time < lines[j].Time })
	return lines
}

// lrcTime converts a matched [mm:ss.xx] tag to milliseconds. A fractional
// part of one or two digits follows the centisecond convention and is
// scaled by ten, so ".5" means 50ms and ".12" means 120ms; three or more
// digits are taken as milliseconds directly. No fractional part means 0.
func lrcTime(tag []string) int64 {
	mm, _ := strconv.ParseInt(tag[1], 10, 64)
	ss, _ := strconv.ParseInt(tag[2], 10, 64)
	ms := int64(0)
	if tag[3] != "" {
		ms, _ = strconv.ParseInt(tag[3], 10, 64)
		if len(tag[3]) <= 2 {
			ms *= 10
		}
	}
	return mm*60_000 + ss*1000 + ms
}
