package main

import (
	"fmt"
	"strings"

	"github.com/jochenvg/go-udev"
)

// candidateDevice is one USB-serial node udev reports on the "tty"
// subsystem, annotated with its USB vendor/product identity when present.
type candidateDevice struct {
	Devnode string
	Vendor  string
	Product string
}

// discoverSerialDevices enumerates tty devices the way cm108_inventory
// enumerates sound and hidraw devices in the teacher: match a subsystem,
// walk the resulting device list, and pull identifying attributes off each
// node's parent USB device.
func discoverSerialDevices() ([]candidateDevice, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("tty"); err != nil {
		return nil, fmt.Errorf("udev: matching tty subsystem: %w", err)
	}

	devices, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("udev: enumerating devices: %w", err)
	}

	var out []candidateDevice
	for _, d := range devices {
		devnode := d.Devnode()
		if devnode == "" {
			continue
		}
		if !strings.Contains(devnode, "ttyUSB") && !strings.Contains(devnode, "ttyACM") {
			continue
		}
		c := candidateDevice{Devnode: devnode}
		if parent := d.ParentWithSubsystemDevtype("usb", "usb_device"); parent != nil {
			c.Vendor = parent.PropertyValue("ID_VENDOR_ID")
			c.Product = parent.PropertyValue("ID_MODEL_ID")
		}
		out = append(out, c)
	}
	return out, nil
}

// autoDetectDevice returns the lone serial candidate when exactly one is
// present, erroring otherwise so the caller falls back to an explicit
// --device flag.
func autoDetectDevice() (string, error) {
	candidates, err := discoverSerialDevices()
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no USB-serial devices found; pass --device explicitly")
	case 1:
		return candidates[0].Devnode, nil
	default:
		var nodes []string
		for _, c := range candidates {
			nodes = append(nodes, c.Devnode)
		}
		return "", fmt.Errorf("multiple USB-serial devices found (%s); pass --device explicitly", strings.Join(nodes, ", "))
	}
}
