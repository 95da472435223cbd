package render

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"
)

// Background is the clear color of every preview.
var Background = Color{R: 20.0 / 255, G: 20.0 / 255, B: 30.0 / 255, A: 1}

// LineWidth is the stroke width of line commands in pixels.
const LineWidth = 2.0

// Rasterize draws list onto a new width x height surface. The caller owns
// the returned context and must Close it.
func Rasterize(list *DrawList, width, height int) (*gg.Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rasterize: invalid surface %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.RGBA2(float64(Background.R), float64(Background.G), float64(Background.B), float64(Background.A)))
	if list == nil {
		return dc, nil
	}

	w, h := float64(width), float64(height)
	for _, c := range list.Items() {
		dc.SetRGBA(float64(c.Color.R), float64(c.Color.G), float64(c.Color.B), float64(c.Color.A))
		x, y := float64(c.Geom[0])*w, float64(c.Geom[1])*h

		var err error
		switch c.Shape {
		case ShapeRect:
			dc.DrawRectangle(x, y, float64(c.Geom[2])*w, float64(c.Geom[3])*h)
			err = dc.Fill()
		case ShapeCircle:
			// Radius is relative to the shorter side so circles stay round.
			dc.DrawCircle(x, y, float64(c.Geom[2])*min(w, h))
			err = dc.Fill()
		case ShapeLine:
			dc.SetLineWidth(LineWidth)
			dc.DrawLine(x, y, float64(c.Geom[2])*w, float64(c.Geom[3])*h)
			err = dc.Stroke()
		}
		if err != nil {
			dc.Close()
			return nil, fmt.Errorf("rasterize node %d (%s): %w", c.Node, c.Shape, err)
		}
	}
	return dc, nil
}

// WritePNG rasterizes list and encodes it as PNG to out.
func WritePNG(out io.Writer, list *DrawList, width, height int) error {
	dc, err := Rasterize(list, width, height)
	if err != nil {
		return err
	}
	defer dc.Close()

	if err := dc.EncodePNG(out); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
