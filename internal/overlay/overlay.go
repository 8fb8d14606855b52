// Package overlay draws hand skeletons and gesture captions onto frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Connections are the landmark pairs joined when drawing a hand.
var Connections = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{0, 9}, {9, 10}, {10, 11}, {11, 12},
	{0, 13}, {13, 14}, {14, 15}, {15, 16},
	{0, 17}, {17, 18}, {18, 19}, {19, 20},
	{5, 9}, {9, 13}, {13, 17},
}

// Style controls colors and sizes.
type Style struct {
	LineColor   color.RGBA
	LineWidth   int
	PointColor  color.RGBA
	PointRadius int
	TextColor   color.RGBA
	TextScale   float64
	// Mirror flips x so the overlay matches a selfie-view preview.
	Mirror bool
}

// DefaultStyle draws green bones and red joints.
func DefaultStyle() Style {
	return Style{
		LineColor:   color.RGBA{G: 255, A: 255},
		LineWidth:   2,
		PointColor:  color.RGBA{R: 255, A: 255},
		PointRadius: 5,
		TextColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		TextScale:   0.7,
	}
}

// ToPixel maps a normalized landmark onto a width x height frame.
func ToPixel(p detector.Point3D, width, height int, mirror bool) image.Point {
	x := p.X
	if mirror {
		x = 1 - x
	}
	return image.Pt(int(math.Round(x*float64(width))), int(math.Round(p.Y*float64(height))))
}

// DrawHand draws the skeleton lines and then the landmark dots.
func DrawHand(img *gocv.Mat, hand *detector.HandLandmarks, style Style) {
	if img == nil || img.Empty() || hand == nil {
		return
	}
	w, h := img.Cols(), img.Rows()

	for _, c := range Connections {
		a := ToPixel(hand.Points[c[0]], w, h, style.Mirror)
		b := ToPixel(hand.Points[c[1]], w, h, style.Mirror)
		gocv.Line(img, a, b, style.LineColor, style.LineWidth)
	}
	for _, p := range hand.Points {
		gocv.Circle(img, ToPixel(p, w, h, style.Mirror), style.PointRadius, style.PointColor, -1)
	}
}

// EffectName turns an animation id such as "particle-explosion" into
// "Particle Explosion". A Caser is not safe for concurrent use, so each call
// builds its own.
func EffectName(animation string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(animation, "-", " "))
}

// Caption is the text shown for a tracker state, e.g.
// "Open Hand - Particle Explosion (90%)".
func Caption(state gesture.State) string {
	info := state.Gesture.Describe()
	if info.Type == gesture.None {
		return info.Label
	}
	return fmt.Sprintf("%s - %s (%d%%)", info.Label, EffectName(info.Animation),
		int(math.Round(state.Confidence*100)))
}

// DrawCaption writes the caption on a dark band whose top-left corner is origin.
func DrawCaption(img *gocv.Mat, text string, origin image.Point, style Style) {
	if img == nil || img.Empty() || text == "" {
		return
	}
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, style.TextScale, 2)
	band := image.Rect(origin.X, origin.Y, origin.X+size.X+16, origin.Y+size.Y+16)
	gocv.Rectangle(img, band, color.RGBA{A: 255}, -1)
	gocv.PutText(img, text, image.Pt(origin.X+8, origin.Y+size.Y+8),
		gocv.FontHersheySimplex, style.TextScale, style.TextColor, 2)
}

// Annotate draws every hand and one caption line per tracked state.
func Annotate(img *gocv.Mat, hands []detector.HandLandmarks, states []gesture.State, style Style) {
	for i := range hands {
		DrawHand(img, &hands[i], style)
	}

	y := 10
	for _, s := range states {
		text := Caption(s)
		if s.Handedness != "" {
			text = s.Handedness + ": " + text
		}
		DrawCaption(img, text, image.Pt(10, y), style)
		y += 40
	}
}

// EncodeJPEG encodes img for streaming.
func EncodeJPEG(img *gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
