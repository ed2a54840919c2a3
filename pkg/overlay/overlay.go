// Package overlay renders detection boxes and label chips onto frames.
package overlay

import (
	"github.com/fogleman/gg"
	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/source"
)

const (
	lineWidth = 2.0
	dashOn    = 8.0
	dashOff   = 5.0
	chipPadX  = 4.0
	chipPadY  = 3.0
)

// Box and chip color (lime green, readable on most scenes).
const (
	boxR = 50
	boxG = 205
	boxB = 50
)

// Render draws each detection as a dashed rectangle plus a filled label
// chip onto a copy of the frame and returns that copy. The input frame
// is never modified.
func Render(frame *source.Frame, dets []detect.Detection) *source.Frame {
	out := frame.Clone()
	if len(dets) == 0 {
		return out
	}

	dc := gg.NewContextForRGBA(out.Image)
	for _, d := range dets {
		drawDetection(dc, d)
	}
	return out
}

func drawDetection(dc *gg.Context, d detect.Detection) {
	// Dashed bounding box
	dc.SetRGB255(boxR, boxG, boxB)
	dc.SetLineWidth(lineWidth)
	dc.SetDash(dashOn, dashOff)
	dc.DrawRectangle(d.Box.X, d.Box.Y, d.Box.W, d.Box.H)
	dc.Stroke()

	// Filled label chip at the box's top edge
	label := d.Label()
	tw, th := dc.MeasureString(label)
	chipW := tw + 2*chipPadX
	chipH := th + 2*chipPadY
	chipY := chipOrigin(d.Box.Y, chipH)

	dc.SetDash()
	dc.DrawRectangle(d.Box.X, chipY, chipW, chipH)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.DrawString(label, d.Box.X+chipPadX, chipY+chipH-chipPadY)
}

// chipOrigin places the label chip above the box's top edge, clamped
// inside the frame when the box touches the top.
func chipOrigin(boxY, chipH float64) float64 {
	y := boxY - chipH
	if y < 0 {
		return boxY
	}
	return y
}
