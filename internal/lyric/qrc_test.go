package lyric

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQrcWordTiming(t *testing.T) {
	lines := parseQrc("[10000,5000]he(10000,1000)llo(11000,500) world(11500,3500)")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if !almost(line.Time, 10) {
		t.Errorf("line time = %v, want 10", line.Time)
	}
	if len(line.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(line.Words))
	}
	if line.Text != "hello world" {
		t.Errorf("text = %q, want %q", line.Text, "hello world")
	}
	if !almost(line.Words[0].Start, 10) || !almost(line.Words[0].Duration, 1) {
		t.Errorf("word 0 = %+v, want start 10 duration 1", line.Words[0])
	}
	if !almost(line.Words[2].Start, 11.5) || !almost(line.Words[2].Duration, 3.5) {
		t.Errorf("word 2 = %+v, want start 11.5 duration 3.5", line.Words[2])
	}
}

func TestQrcContinuationMarker(t *testing.T) {
	lines := parseQrc("[10000,5000]a(10000,1000)b(0,0)c(12000,1000)")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	w := lines[0].Words
	if len(w) != 3 {
		t.Fatalf("expected 3 words, got %d", len(w))
	}
	// zero duration inherits the prior word's end time
	if !almost(w[1].Start, 11) || !almost(w[1].Duration, 0.1) {
		t.Errorf("continuation word = %+v, want start 11 duration 0.1", w[1])
	}
}

func TestQrcFirstWordContinuationFallsBackToLineStart(t *testing.T) {
	lines := parseQrc("[10000,5000]a(0,0)b(12000,1000)")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	w := lines[0].Words
	if !almost(w[0].Start, 10) || !almost(w[0].Duration, 0.1) {
		t.Errorf("first word = %+v, want start 10 duration 0.1", w[0])
	}
}

func TestQrcTrailingText(t *testing.T) {
	lines := parseQrc("[10000,5000]hel(10000,1000)lo")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	w := lines[0].Words
	if len(w) != 2 {
		t.Fatalf("expected 2 words, got %d", len(w))
	}
	if w[1].Text != "lo" || !almost(w[1].Start, 11) || !almost(w[1].Duration, 0.1) {
		t.Errorf("trailing word = %+v, want text lo start 11 duration 0.1", w[1])
	}
}

func TestQrcLineWithoutMarkers(t *testing.T) {
	lines := parseQrc("[10000,5000]just text")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	w := lines[0].Words
	if len(w) != 1 || w[0].Text != "just text" || !almost(w[0].Duration, 5) {
		t.Errorf("words = %+v, want one word spanning the line", w)
	}
}

func TestQrcDropRules(t *testing.T) {
	testCases := []struct {
		name string
		text string
		kept int
	}{
		{"metadata credit", "[1000,2000]作词:某人(1000,500)\n[70000,2000]real(70000,500)", 1},
		{"english credit", "[1000,2000]Written by: someone(1000,500)\n[70000,2000]real(70000,500)", 1},
		{"punctuation only", "[1000,2000]***(1000,500)\n[70000,2000]real(70000,500)", 1},
		{"early title line", "[1000,2000]Song - Artist(1000,500)\n[70000,2000]real(70000,500)", 1},
		{"late hyphen line kept", "[70000,2000]over - and over(70000,500)", 1},
		{"hyphen line not first kept", "[1000,2000]real(1000,500)\n[3000,2000]a - b(3000,500)", 2},
	}

	for _, tc := range testCases {
		lines := parseQrc(tc.text)
		if len(lines) != tc.kept {
			t.Errorf("%s: kept %d lines, want %d", tc.name, len(lines), tc.kept)
		}
	}
}

func TestQrcTranslationMerge(t *testing.T) {
	l := Parse("[10000,2000]hello(10000,500)world(10500,500)\n[20000,2000]bye(20000,500)now(20500,500)", "[00:10.20]你好世界")
	if !l.IsQrc {
		t.Fatal("expected QRC classification")
	}
	if l.QrcLines[0].Translation != "你好世界" {
		t.Errorf("translation = %q, want %q", l.QrcLines[0].Translation, "你好世界")
	}
	if l.QrcLines[1].Translation != "" {
		t.Errorf("translation = %q, want empty", l.QrcLines[1].Translation)
	}
}
