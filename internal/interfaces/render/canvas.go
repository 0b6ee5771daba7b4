package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

// Canvas margins around the data window, in pixels.
const (
	marginLeft   = 64
	marginRight  = 16
	marginTop    = 16
	marginBottom = 44
	tickLength   = 4
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	grey  = color.RGBA{96, 96, 96, 255}
)

// Canvas is an RGBA image with a data window mapped onto a plot area.
type Canvas struct {
	img  *image.RGBA
	plot image.Rectangle
	x, y phase.Range
	face font.Face
}

// NewCanvas returns a white canvas of width × height pixels whose plot area
// shows x horizontally and y vertically, y increasing upwards.
func NewCanvas(width, height int, x, y phase.Range) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &Canvas{
		img:  img,
		plot: image.Rect(marginLeft, marginTop, width-marginRight, height-marginBottom),
		x:    x,
		y:    y,
		face: basicfont.Face7x13,
	}
}

// Image returns the underlying image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// PlotArea returns the pixel rectangle of the data window.
func (c *Canvas) PlotArea() image.Rectangle { return c.plot }

// Point maps a data coordinate to a pixel.
func (c *Canvas) Point(x, y float64) image.Point {
	fx := (x - c.x.Min) / (c.x.Max - c.x.Min)
	fy := (y - c.y.Min) / (c.y.Max - c.y.Min)
	return image.Point{
		X: c.plot.Min.X + int(math.Round(fx*float64(c.plot.Dx()))),
		Y: c.plot.Max.Y - int(math.Round(fy*float64(c.plot.Dy()))),
	}
}

// pixelRect maps a data rectangle to pixels, clipped to the plot area.
func (c *Canvas) pixelRect(x, y phase.Range) image.Rectangle {
	lo := c.Point(x.Min, y.Min)
	hi := c.Point(x.Max, y.Max)
	return image.Rect(lo.X, hi.Y, hi.X, lo.Y).Intersect(c.plot)
}

// FillRect composites col over the data rectangle x × y.
func (c *Canvas) FillRect(x, y phase.Range, col color.Color) {
	r := c.pixelRect(x, y)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect outlines the data rectangle x × y.
func (c *Canvas) StrokeRect(x, y phase.Range, col color.Color) {
	r := c.pixelRect(x, y)
	if r.Empty() {
		return
	}
	u := image.NewUniform(col)
	draw.Draw(c.img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Over)
	draw.Draw(c.img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(c.img, image.Rect(r.Min.X, r.Min.Y+1, r.Min.X+1, r.Max.Y-1), u, image.Point{}, draw.Over)
	draw.Draw(c.img, image.Rect(r.Max.X-1, r.Min.Y+1, r.Max.X, r.Max.Y-1), u, image.Point{}, draw.Over)
}

// VLine draws a one-pixel vertical line at data x across the plot area.
func (c *Canvas) VLine(x float64, col color.Color) {
	px := c.Point(x, c.y.Min).X
	r := image.Rect(px, c.plot.Min.Y, px+1, c.plot.Max.Y).Intersect(c.plot)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// HLine draws a one-pixel horizontal line at data y across the plot area.
func (c *Canvas) HLine(y float64, col color.Color) {
	py := c.Point(c.x.Min, y).Y
	r := image.Rect(c.plot.Min.X, py, c.plot.Max.X, py+1).Intersect(c.plot)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// VerticalGradient composites white over the data rectangle with alpha
// rising linearly from 0 at the bottom to maxAlpha at the top.
func (c *Canvas) VerticalGradient(x, y phase.Range, maxAlpha float64) {
	r := c.pixelRect(x, y)
	h := r.Dy()
	for row := r.Min.Y; row < r.Max.Y; row++ {
		a := maxAlpha * float64(r.Max.Y-1-row) / math.Max(float64(h-1), 1)
		line := image.Rect(r.Min.X, row, r.Max.X, row+1)
		draw.Draw(c.img, line, image.NewUniform(withAlpha(white, a)), image.Point{}, draw.Over)
	}
}

// TextWidth is the advance of s in pixels.
func (c *Canvas) TextWidth(s string) int {
	return font.MeasureString(c.face, s).Round()
}

// Text draws s with its baseline-left corner at pt.
func (c *Canvas) Text(pt image.Point, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(s)
}

// Axes draws the frame, ticks and axis labels.
func (c *Canvas) Axes(xLabel, yLabel string) {
	c.outline(c.plot, black)
	ascent := c.face.Metrics().Ascent.Round()

	for _, v := range ticks(c.x.Min, c.x.Max, 6) {
		p := c.Point(v, c.y.Min)
		draw.Draw(c.img, image.Rect(p.X, c.plot.Max.Y, p.X+1, c.plot.Max.Y+tickLength), image.NewUniform(black), image.Point{}, draw.Src)
		label := formatTick(v)
		c.Text(image.Pt(p.X-c.TextWidth(label)/2, c.plot.Max.Y+tickLength+ascent+2), label, grey)
	}
	for _, v := range ticks(c.y.Min, c.y.Max, 6) {
		p := c.Point(c.x.Min, v)
		draw.Draw(c.img, image.Rect(c.plot.Min.X-tickLength, p.Y, c.plot.Min.X, p.Y+1), image.NewUniform(black), image.Point{}, draw.Src)
		label := formatTick(v)
		c.Text(image.Pt(c.plot.Min.X-tickLength-2-c.TextWidth(label), p.Y+ascent/2), label, grey)
	}

	b := c.img.Bounds()
	c.Text(image.Pt(c.plot.Min.X+(c.plot.Dx()-c.TextWidth(xLabel))/2, b.Max.Y-6), xLabel, black)
	c.Text(image.Pt(4, c.plot.Min.Y-4+ascent), yLabel, black)
}

// LegendEntry is one swatch and label in a legend.
type LegendEntry struct {
	Color color.RGBA
	Label string
}

// Legend draws entries in a box at the top-right corner of the plot area.
func (c *Canvas) Legend(entries []LegendEntry) {
	if len(entries) == 0 {
		return
	}
	const (
		pad    = 6
		swatch = 10
		line   = 16
	)
	w := 0
	for _, e := range entries {
		if tw := c.TextWidth(e.Label); tw > w {
			w = tw
		}
	}
	box := image.Rect(0, 0, pad+swatch+pad+w+pad, pad+len(entries)*line+pad-(line-swatch))
	box = box.Add(image.Pt(c.plot.Max.X-box.Dx()-pad, c.plot.Min.Y+pad))

	draw.Draw(c.img, box, image.NewUniform(withAlpha(white, 0.85)), image.Point{}, draw.Over)
	c.outline(box, grey)
	ascent := c.face.Metrics().Ascent.Round()
	for i, e := range entries {
		top := box.Min.Y + pad + i*line
		sw := image.Rect(box.Min.X+pad, top, box.Min.X+pad+swatch, top+swatch)
		draw.Draw(c.img, sw, image.NewUniform(withAlpha(e.Color, 0.7)), image.Point{}, draw.Over)
		c.Text(image.Pt(sw.Max.X+pad, top+ascent-1), e.Label, black)
	}
}

func (c *Canvas) outline(r image.Rectangle, col color.Color) {
	u := image.NewUniform(col)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(c.img, edge, u, image.Point{}, draw.Src)
	}
}

// EncodePNG writes the canvas as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "failed to encode png")
	}
	return nil
}

// ticks returns about n round values spanning [lo, hi].
func ticks(lo, hi float64, n int) []float64 {
	if !(hi > lo) || n < 2 {
		return nil
	}
	raw := (hi - lo) / float64(n-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag * 10
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		out = append(out, v)
	}
	return out
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-12 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

//Personal.AI order the ending
