//go:build m5stack

package main

import (
	"machine"

	"github.com/tuffrabit/m5stack-beatmask/pkg/display"
	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
	"github.com/tuffrabit/m5stack-beatmask/serial"
)

// MAIN THREAD DUTIES
// 1. Bring up the LCD and show the banner
// 2. Poll UART0 for command lines and apply them to the LCD
//
// tinygo flash -target=m5stack .

func main() {
	screen := display.NewController(display.NewM5Stack())
	screen.Initialize()

	uart := machine.UART0 // CP2104 USB-UART bridge
	uart.Configure(machine.UARTConfig{BaudRate: serial.BaudRate})

	mainSerial := serial.NewSerial(uart)
	handler := protocol.NewHandler(screen)

	// Single loop owns the screen; never returns
	mainSerial.Handle(handler)
}
