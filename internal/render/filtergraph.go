package render

import (
	"fmt"
	"strings"
)

// panelChain is one labeled filter chain: an input label, a sequence of
// filter stages, and an output label.
type panelChain struct {
	in     string
	out    string
	stages []string
}

func (c *panelChain) add(format string, args ...any) {
	c.stages = append(c.stages, fmt.Sprintf(format, args...))
}

func (c *panelChain) String() string {
	return "[" + c.in + "]" + strings.Join(c.stages, ",") + "[" + c.out + "]"
}

// fnum formats a fraction for filter expressions: six decimals with
// trailing zeros trimmed, so 0.5 stays "0.5" and not "0.500000".
func fnum(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// cropStage appends a normalized-rect crop. Pixel bounds are floored so
// the crop never exceeds the source frame.
func (c *panelChain) cropStage(r Rect) {
	if r == FullFrame() {
		return
	}
	c.add("crop=floor(iw*%s):floor(ih*%s):floor(iw*%s):floor(ih*%s)",
		fnum(r.W), fnum(r.H), fnum(r.X), fnum(r.Y))
}

// containStages scales to fit inside w×h and pads the remainder with
// black, centered. force_divisible_by keeps both scaled dimensions even
// for yuv420p.
func (c *panelChain) containStages(w, h int) {
	c.add("scale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2", w, h)
	c.add("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", w, h)
}

// coverStages scales to fill w×h and crops the centered excess. The
// increase mode is the aspect-conditional scale: whichever dimension
// overshoots gets trimmed by the crop.
func (c *panelChain) coverStages(w, h int) {
	c.add("scale=%d:%d:force_original_aspect_ratio=increase:force_divisible_by=2", w, h)
	c.add("crop=%d:%d:(iw-%d)/2:(ih-%d)/2", w, h, w, h)
}

func (c *panelChain) fitStages(mode FitMode, w, h int) {
	if mode == FitCover {
		c.coverStages(w, h)
	} else {
		c.containStages(w, h)
	}
}

// BuildFilterGraph produces the -filter_complex expression for the
// stacked two-panel composition: camera on top, game below, joined by
// vstack into [outv].
func BuildFilterGraph(camera, game Rect, lay Layout, cameraFit, gameFit FitMode) string {
	cam := &panelChain{in: "0:v", out: "cam"}
	cam.cropStage(camera.Clamp())
	cam.fitStages(cameraFit, OutputWidth, lay.TopHeight)
	if len(cam.stages) == 0 {
		cam.add("null")
	}

	gm := &panelChain{in: "0:v", out: "game"}
	gm.cropStage(game.Clamp())
	gm.fitStages(gameFit, OutputWidth, lay.BottomHeight)
	if len(gm.stages) == 0 {
		gm.add("null")
	}

	return cam.String() + ";" + gm.String() + ";[cam][game]vstack=inputs=2[outv]"
}

// BuildSingleFrameGraph produces the blurred-backdrop composition: the
// crop cover-fills the full canvas, blurred and darkened, with a sharp
// cover-fit panel of lay.PanelHeight overlaid dead center.
func BuildSingleFrameGraph(crop Rect, lay Layout) string {
	crop = crop.Clamp()

	bg := &panelChain{in: "0:v", out: "bg"}
	bg.cropStage(crop)
	bg.coverStages(OutputWidth, OutputHeight)
	bg.add("boxblur=20:2")
	bg.add("eq=brightness=-0.08")

	fg := &panelChain{in: "0:v", out: "fg"}
	fg.cropStage(crop)
	fg.coverStages(OutputWidth, lay.PanelHeight)

	return bg.String() + ";" + fg.String() + ";[bg][fg]overlay=(W-w)/2:(H-h)/2[outv]"
}
