//go:build m5stack

package display

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

const (
	// M5Stack Core panel (ILI9342C), landscape
	screenWidth  = 320
	screenHeight = 240

	spiFrequency = 40e6
)

// NewM5Stack brings up the M5Stack Core LCD and switches the backlight on.
func NewM5Stack() *ili9341.Device {
	// Initialize SPI bus
	machine.SPI2.Configure(machine.SPIConfig{
		SCK:       machine.LCD_SCK_PIN,
		SDO:       machine.LCD_SDO_PIN,
		SDI:       machine.LCD_SDI_PIN,
		Frequency: spiFrequency,
	})

	backlight := machine.LCD_BL_PIN
	backlight.Configure(machine.PinConfig{Mode: machine.PinOutput})

	dev := ili9341.NewSPI(
		machine.SPI2,
		machine.LCD_DC_PIN,
		machine.LCD_SS_PIN,
		machine.LCD_RST_PIN,
	)
	dev.Configure(ili9341.Config{
		Width:            screenWidth,
		Height:           screenHeight,
		DisplayInversion: true,
	})
	dev.SetRotation(ili9341.Rotation0Mirror)

	backlight.High()

	return dev
}
