//go:build linux

package backbutton

import (
	"context"
	"fmt"

	"github.com/holoplot/go-evdev"
)

// Device reads key events from an evdev input device.
type Device struct {
	Config Config
}

func NewDevice(cfg Config) *Device {
	if cfg.Code == 0 {
		cfg.Code = KeyBack
	}
	return &Device{Config: cfg}
}

// Run opens the device and reports every key down of the configured code.
// Closing the device on cancellation unblocks the pending read.
func (d *Device) Run(ctx context.Context, press func()) error {
	dev, err := evdev.Open(d.Config.DevicePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.Config.DevicePath, err)
	}
	stop := context.AfterFunc(ctx, func() { dev.Close() })
	defer func() {
		if stop() {
			dev.Close()
		}
	}()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read %s: %w", d.Config.DevicePath, err)
		}
		if ev.Type == evdev.EV_KEY && uint16(ev.Code) == d.Config.Code && ev.Value == 1 {
			press()
		}
	}
}
