//go:build !linux

package backbutton

import "context"

type Device struct {
	Config Config
}

func NewDevice(cfg Config) *Device {
	if cfg.Code == 0 {
		cfg.Code = KeyBack
	}
	return &Device{Config: cfg}
}

// Run always fails: evdev exists only on Linux.
func (d *Device) Run(context.Context, func()) error {
	return ErrUnsupported
}
