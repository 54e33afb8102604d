package render

import "math"

// Output canvas for vertical exports (TikTok/Reels/Shorts).
const (
	OutputWidth  = 1080
	OutputHeight = 1920
)

// FitMode selects how a cropped region fills its panel.
type FitMode string

const (
	// FitContain scales to fit inside the panel and pads the remainder.
	FitContain FitMode = "contain"
	// FitCover scales to fill the panel and crops the excess.
	FitCover FitMode = "cover"
)

// ParseFitMode maps a request string to a FitMode, defaulting to
// contain for anything unrecognized.
func ParseFitMode(s string) FitMode {
	if FitMode(s) == FitCover {
		return FitCover
	}
	return FitContain
}

// Layout is the concrete panel geometry for one composition. For the
// stacked layout the camera panel sits on top of the game panel; in
// single-frame mode a sharp panel of PanelHeight is overlaid on a
// full-canvas blurred backdrop.
type Layout struct {
	TopHeight    int
	BottomHeight int
	SingleFrame  bool
	PanelHeight  int
}

// PlanSplit computes panel heights for the two-panel stacked layout.
//
// Manual mode splits the canvas by ratio (the game panel's share).
// Auto mode weights each panel by the inverse aspect ratio of its crop:
// the narrower the crop, the taller the panel it needs under contain
// fit. Both heights come out even and sum exactly to OutputHeight.
func PlanSplit(camera, game Rect, ratio float64, autoSplit bool) Layout {
	var want int
	if autoSplit {
		pCam := 1 / camera.Aspect()
		pGame := 1 / game.Aspect()
		want = int(math.Round(OutputHeight * pCam / (pCam + pGame)))
	} else {
		ratio = clamp01(ratio)
		want = int(math.Round(OutputHeight * (1 - ratio)))
	}
	top, bottom := evenSplit(OutputHeight, want)
	return Layout{TopHeight: top, BottomHeight: bottom}
}

// PlanSingleFrame computes the sharp panel height for the blurred
// backdrop layout. heightRatio is clamped to [0.05, 0.95] of the
// canvas and the resulting height is forced even.
func PlanSingleFrame(heightRatio float64) Layout {
	hr := clampRange(heightRatio, 0.05, 0.95)
	panel := int(math.Round(OutputHeight * hr))
	panel -= panel % 2
	if panel < 2 {
		panel = 2
	}
	return Layout{SingleFrame: true, PanelHeight: panel}
}
