package captions

import (
	"strings"

	"github.com/Kquxxi/e2eClipUploader/internal/transcript"
)

// Caption block metrics for the 1080x1920 canvas. Glyph widths use an
// approximate average advance since no font rasterizer is involved;
// the highlight box pads around that estimate.
const (
	DefaultFontSize  = 65
	DefaultWrapWidth = 25 // characters per line before wrapping

	glyphAdvance = 0.58 // fraction of the font size per character
	lineGap      = 10
	boxPadX      = 15
	boxPadY      = 10
	blockPadY    = 30

	canvasCenterX = 540
	canvasCenterY = 960
)

// WordBox is the highlight rectangle behind one word, in canvas pixels.
type WordBox struct {
	Word string
	Line int
	X    float64
	Y    float64
	W    float64
	H    float64
}

// Block is a laid-out caption segment: wrapped lines plus one box per
// word, positioned for a block centered on the canvas. TopY is the
// canvas y coordinate of the first line's top edge.
type Block struct {
	Lines []string
	Boxes []WordBox
	TopY  float64
}

func advance(s string, fontSize int) float64 {
	return float64(len([]rune(s))) * glyphAdvance * float64(fontSize)
}

func lineHeight(fontSize int) float64 {
	return float64(fontSize + lineGap)
}

// LayoutBlock wraps words into lines of at most wrapWidth characters
// and computes each word's highlight box. Lines are centered
// horizontally; the whole block is centered vertically on the canvas.
func LayoutBlock(words []transcript.Word, fontSize, wrapWidth int) Block {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var lines [][]string
	var cur []string
	curLen := 0
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			t = " "
		}
		need := len([]rune(t))
		if curLen > 0 {
			need += 1 + curLen
		}
		if curLen > 0 && need > wrapWidth {
			lines = append(lines, cur)
			cur = nil
			curLen = 0
		}
		cur = append(cur, t)
		if curLen > 0 {
			curLen++
		}
		curLen += len([]rune(t))
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	lh := lineHeight(fontSize)
	blockH := float64(len(lines))*lh + blockPadY
	topY := canvasCenterY - blockH/2

	b := Block{TopY: topY}
	for li, line := range lines {
		b.Lines = append(b.Lines, strings.Join(line, " "))
		lineW := advance(strings.Join(line, " "), fontSize)
		x := canvasCenterX - lineW/2
		y := topY + float64(li)*lh
		for _, word := range line {
			w := advance(word, fontSize)
			b.Boxes = append(b.Boxes, WordBox{
				Word: word,
				Line: li,
				X:    x - boxPadX,
				Y:    y - boxPadY,
				W:    w + 2*boxPadX,
				H:    lh + boxPadY,
			})
			x += w + advance(" ", fontSize)
		}
	}
	return b
}

// ActiveWordIndex finds which word is highlighted at absolute time t:
// the word containing t, else the most recent word already ended, else
// the first word.
func ActiveWordIndex(words []transcript.Word, t float64) int {
	last := 0
	for i, w := range words {
		if t >= w.Start && t < w.End {
			return i
		}
		if w.End <= t {
			last = i
		}
	}
	return last
}
