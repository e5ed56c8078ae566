// Package hidusage defines the logical key identifier used throughout the
// driver: a HID usage, a 16-bit usage page combined with a 16-bit usage ID.
package hidusage

import "fmt"

// Usage packs a usage page and usage ID into a single comparable value.
type Usage uint32

func NewUsage(page, id uint16) Usage {
	return Usage(uint32(page)<<16 | uint32(id))
}

func (u Usage) Page() uint16 {
	return uint16(u >> 16)
}

func (u Usage) ID() uint16 {
	return uint16(u)
}

func (u Usage) String() string {
	return fmt.Sprintf("0x%02x/0x%02x", u.Page(), u.ID())
}

// Usage pages referenced by the driver.
const (
	GenericDesktop uint16 = 0x01
	KeyboardKeypad uint16 = 0x07
	Consumer       uint16 = 0x0c
)

// Generic Desktop application usages, used to classify logical input
// surfaces exposed by a device.
const (
	AppKeyboard uint16 = 0x06
	AppKeypad   uint16 = 0x07
)

// Consumer page usages emitted by the media keys.
const (
	ConsumerControl   uint16 = 0x01
	ScanNextTrack     uint16 = 0xb5
	ScanPreviousTrack uint16 = 0xb6
	Stop              uint16 = 0xb7
	PlayPause         uint16 = 0xcd
)

// Keyboard page usages for the extra function keys the firmware re-purposes.
const (
	KeyF13 uint16 = 0x68
	KeyF14 uint16 = 0x69
	KeyF15 uint16 = 0x6a
	KeyF16 uint16 = 0x6b
	KeyF17 uint16 = 0x6c
	KeyF18 uint16 = 0x6d
	KeyF19 uint16 = 0x6e
	KeyF20 uint16 = 0x6f
)
