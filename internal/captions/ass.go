package captions

import (
	"fmt"
	"strings"

	"github.com/Kquxxi/e2eClipUploader/internal/transcript"
)

// Event is one ASS dialogue line.
type Event struct {
	Layer int
	Start float64
	End   float64
	Style string
	Text  string
}

const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
WrapStyle: 2
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Karaoke,%s,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,3,0,8,20,20,20,1
Style: Box,%s,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,0,0,7,0,0,0,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// assTime renders seconds as the H:MM:SS.cc timestamp ASS uses.
func assTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(sec*100 + 0.5)
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// escapeASS neutralizes characters with meaning in dialogue text.
func escapeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\ ")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", "\\N")
	return s
}

// SegmentEvents builds the karaoke events for one caption segment: for
// each word window a colored box event behind the active word (layer 0)
// and the full text block on top (layer 1). Word i's window runs from
// its start to the next word's start; the last window extends to the
// segment end so the caption does not vanish during trailing silence.
func SegmentEvents(words []transcript.Word, color Color, fontSize, wrapWidth int) []Event {
	if len(words) == 0 {
		return nil
	}
	block := LayoutBlock(words, fontSize, wrapWidth)
	if len(block.Boxes) != len(words) {
		return nil
	}
	segEnd := words[len(words)-1].End

	text := escapeASS(strings.Join(block.Lines, "\n"))
	textOverride := fmt.Sprintf(`{\an8\pos(%d,%.0f)}`, canvasCenterX, block.TopY)

	var events []Event
	for i, w := range words {
		start := w.Start
		end := segEnd
		if i+1 < len(words) {
			end = words[i+1].Start
		}
		if end <= start {
			continue
		}
		box := block.Boxes[i]
		events = append(events,
			Event{
				Layer: 0,
				Start: start,
				End:   end,
				Style: "Box",
				Text: fmt.Sprintf(`{\an7\pos(%.0f,%.0f)\1c%s\bord0\shad0\p1}m 0 0 l %.0f 0 l %.0f %.0f l 0 %.0f{\p0}`,
					box.X, box.Y, color.ASS, box.W, box.W, box.H, box.H),
			},
			Event{
				Layer: 1,
				Start: start,
				End:   end,
				Style: "Karaoke",
				Text:  textOverride + text,
			},
		)
	}
	return events
}

// BuildScript assembles the full ASS document from events.
func BuildScript(events []Event, fontName string, fontSize int) string {
	if fontName == "" {
		fontName = "Montserrat"
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	var b strings.Builder
	fmt.Fprintf(&b, assHeader, fontName, fontSize, fontName, fontSize)
	for _, e := range events {
		fmt.Fprintf(&b, "Dialogue: %d,%s,%s,%s,,0,0,0,,%s\n",
			e.Layer, assTime(e.Start), assTime(e.End), e.Style, e.Text)
	}
	return b.String()
}
