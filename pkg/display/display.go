// Package display drives the M5Stack TFT: a startup banner, then either a
// blank screen or a single circle outline.
//
// The controller only issues drawing commands and never reads the panel
// back, so whatever was drawn last stays on screen.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	Banner    = "M5Stack Initialized"
	TextScale = 2

	// Baseline of the first text row before scaling
	bannerBaseline = 10
)

var (
	// Alpha is dropped when the ILI9341 driver packs to RGB565
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}

	font = &proggy.TinySZ8pt7b
)

// Device is a panel that can be filled in one call.
// *ili9341.Device satisfies it.
type Device interface {
	drivers.Displayer
	FillScreen(c color.RGBA)
}

// Controller owns the panel. It is not safe for concurrent use.
type Controller struct {
	device Device
	text   *scaled
}

// NewController wraps an already configured panel.
func NewController(dev Device) *Controller {
	return &Controller{
		device: dev,
		text:   &scaled{Displayer: dev, factor: TextScale},
	}
}

// Initialize clears the panel and prints the banner.
// Call it once, before Clear or DrawCircle.
func (c *Controller) Initialize() {
	c.device.FillScreen(black)
	c.println(Banner)
	c.refresh()
}

// Clear erases everything on screen.
func (c *Controller) Clear() {
	c.device.FillScreen(black)
	c.refresh()
}

// DrawCircle draws a one pixel circle outline centered on (x, y).
func (c *Controller) DrawCircle(x, y, r int16, col color.RGBA) {
	tinydraw.Circle(c.device, x, y, r, col)
	c.refresh()
}

// println writes s on the first text row at the text scale.
func (c *Controller) println(s string) {
	tinyfont.WriteLine(c.text, font, 0, bannerBaseline, s, white)
}

func (c *Controller) refresh() {
	c.device.Display()
}

// scaled magnifies every pixel into a factor x factor block, the same way
// the M5 text size setting does.
type scaled struct {
	drivers.Displayer
	factor int16
}

func (s *scaled) Size() (x, y int16) {
	w, h := s.Displayer.Size()
	return w / s.factor, h / s.factor
}

func (s *scaled) SetPixel(x, y int16, c color.RGBA) {
	x0, y0 := x*s.factor, y*s.factor
	for dy := int16(0); dy < s.factor; dy++ {
		for dx := int16(0); dx < s.factor; dx++ {
			s.Displayer.SetPixel(x0+dx, y0+dy, c)
		}
	}
}
