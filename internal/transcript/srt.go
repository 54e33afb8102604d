package transcript

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cue is one SRT subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

// ParseSRT parses SRT content. Malformed blocks are skipped rather than
// failing the whole file; diarization pipelines produce ragged output.
func ParseSRT(content string) []Cue {
	var cues []Cue
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Cue
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case line == "":
			if cur != nil && len(cur.Lines) > 0 {
				cues = append(cues, *cur)
			}
			cur = nil
		case cur == nil:
			idx, err := strconv.Atoi(line)
			if err != nil {
				continue
			}
			cur = &Cue{Index: idx}
		case cur.End == 0 && strings.Contains(line, "-->"):
			start, end, err := parseTimeline(line)
			if err != nil {
				cur = nil
				continue
			}
			cur.Start, cur.End = start, end
		default:
			cur.Lines = append(cur.Lines, line)
		}
	}
	if cur != nil && len(cur.Lines) > 0 {
		cues = append(cues, *cur)
	}
	return cues
}

func parseTimeline(line string) (time.Duration, time.Duration, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad timeline %q", line)
	}
	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp reads HH:MM:SS,mmm (a dot separator is tolerated).
func parseTimestamp(s string) (time.Duration, error) {
	s = strings.Replace(s, ".", ",", 1)
	var h, m, sec, ms int
	if _, err := fmt.Sscanf(s, "%d:%d:%d,%d", &h, &m, &sec, &ms); err != nil {
		return 0, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// FormatTimestamp renders a duration as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ShiftCues moves every cue earlier by offset, clamping at zero and
// dropping cues that end before the new origin.
func ShiftCues(cues []Cue, offset time.Duration) []Cue {
	var out []Cue
	for _, c := range cues {
		start := c.Start - offset
		end := c.End - offset
		if end <= 0 {
			continue
		}
		if start < 0 {
			start = 0
		}
		c.Start, c.End = start, end
		c.Index = len(out) + 1
		out = append(out, c)
	}
	return out
}

// WriteSRT serializes cues back to SRT format.
func WriteSRT(cues []Cue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(c.Start), FormatTimestamp(c.End),
			strings.Join(c.Lines, "\n"))
	}
	return b.String()
}
