package display

import (
	"image/color"
	"testing"

	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

const (
	testWidth  = 320
	testHeight = 240
)

// memPanel is an in-memory framebuffer standing in for the ILI9342C.
type memPanel struct {
	pixels   [testWidth * testHeight]color.RGBA
	fills    int
	displays int
}

func (p *memPanel) Size() (x, y int16) {
	return testWidth, testHeight
}

func (p *memPanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= testWidth || y >= testHeight {
		return
	}
	p.pixels[int(y)*testWidth+int(x)] = c
}

func (p *memPanel) Display() error {
	p.displays++
	return nil
}

func (p *memPanel) FillScreen(c color.RGBA) {
	p.fills++
	for i := range p.pixels {
		p.pixels[i] = c
	}
}

func (p *memPanel) at(x, y int) color.RGBA {
	return p.pixels[y*testWidth+x]
}

// dark ignores alpha, which panels drop when packing to RGB565.
func (p *memPanel) dark(x, y int) bool {
	c := p.at(x, y)
	return c.R == 0 && c.G == 0 && c.B == 0
}

// lit counts non-black pixels inside the rectangle [x0,x1) x [y0,y1).
func (p *memPanel) lit(x0, y0, x1, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if !p.dark(x, y) {
				n++
			}
		}
	}
	return n
}

func newTestController() (*Controller, *memPanel) {
	panel := &memPanel{}
	c := NewController(panel)
	c.Initialize()
	return c, panel
}

func drawDefaultCircle(c *Controller) {
	c.DrawCircle(protocol.CircleX, protocol.CircleY, protocol.CircleRadius, protocol.CircleColor)
}

func TestInitializeShowsBannerOnly(t *testing.T) {
	_, panel := newTestController()

	if panel.fills != 1 {
		t.Errorf("Expected one fill, got %d", panel.fills)
	}

	// Banner occupies the top rows
	if panel.lit(0, 0, testWidth, 40) == 0 {
		t.Fatal("Expected banner pixels in the top rows")
	}

	// Nothing else on screen, in particular no circle
	if n := panel.lit(0, 40, testWidth, testHeight); n != 0 {
		t.Errorf("Expected blank screen below banner, got %d lit pixels", n)
	}
	if !panel.dark(170, 120) {
		t.Error("Circle should not be present after Initialize")
	}
}

func TestDarkIgnoresAlpha(t *testing.T) {
	panel := &memPanel{}

	panel.SetPixel(0, 0, color.RGBA{0, 0, 0, 0})
	panel.SetPixel(1, 0, black)
	panel.SetPixel(2, 0, color.RGBA{0, 0, 1, 0})

	if n := panel.lit(0, 0, 3, 1); n != 1 {
		t.Errorf("Expected 1 lit pixel, got %d", n)
	}
}

func TestBannerIsScaled(t *testing.T) {
	_, panel := newTestController()

	// Text scale 2 fills every pixel in aligned 2x2 blocks
	for y := 0; y < 40; y += 2 {
		for x := 0; x < testWidth; x += 2 {
			c := panel.at(x, y)
			if panel.at(x+1, y) != c || panel.at(x, y+1) != c || panel.at(x+1, y+1) != c {
				t.Fatalf("Pixel block at (%d,%d) is not uniform", x, y)
			}
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c, panel := newTestController()

	c.Clear()
	drawDefaultCircle(c)

	for _, pt := range [][2]int{{170, 120}, {70, 120}, {120, 70}, {120, 170}} {
		if got := panel.at(pt[0], pt[1]); got != protocol.CircleColor {
			t.Errorf("Pixel (%d,%d): expected circle color, got %v", pt[0], pt[1], got)
		}
	}

	// Outline only
	if !panel.dark(120, 120) {
		t.Error("Circle center should stay black")
	}
	if !panel.dark(171, 120) || !panel.dark(169, 120) {
		t.Error("Circle should be one pixel wide")
	}

	// Clear removed the banner
	if n := panel.lit(0, 0, testWidth, 40); n != 0 {
		t.Errorf("Expected banner to be cleared, got %d lit pixels", n)
	}
}

func TestClearAfterDraw(t *testing.T) {
	c, panel := newTestController()

	c.Clear()
	drawDefaultCircle(c)
	c.Clear()

	if n := panel.lit(0, 0, testWidth, testHeight); n != 0 {
		t.Errorf("Expected blank screen, got %d lit pixels", n)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	c, panel := newTestController()

	c.Clear()
	once := panel.pixels
	c.Clear()

	if panel.pixels != once {
		t.Error("Second Clear changed the screen")
	}
}

func TestHandlerDrivesController(t *testing.T) {
	c, panel := newTestController()
	h := protocol.NewHandler(c)

	h.Handle("1")
	if panel.at(170, 120) != protocol.CircleColor {
		t.Fatal("Expected circle after \"1\"")
	}

	before := panel.pixels
	for _, line := range []string{"", "10", " 1", "1 "} {
		h.Handle(line)
	}
	if panel.pixels != before {
		t.Error("Unrecognized lines mutated the screen")
	}

	h.Handle("0")
	if n := panel.lit(0, 0, testWidth, testHeight); n != 0 {
		t.Errorf("Expected blank screen after \"0\", got %d lit pixels", n)
	}
}

func TestScaledSize(t *testing.T) {
	s := &scaled{Displayer: &memPanel{}, factor: 2}

	w, h := s.Size()
	if w != testWidth/2 || h != testHeight/2 {
		t.Errorf("Expected %dx%d, got %dx%d", testWidth/2, testHeight/2, w, h)
	}
}
