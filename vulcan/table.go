// Package vulcan decodes the re-purposed raw reports that Roccat Vulcan
// keyboards emit for their media, profile and FX keys once an LED
// initialization sequence has been sent to the device. The firmware then
// stops sending regular scancodes for those keys and instead emits fixed
// 5-byte sequences on the vendor interface.
package vulcan

import "github.com/vulcankb/vulcand/pkg/hidusage"

// SequenceLength is the exact size of a special-key report. Reports of any
// other length are never special-key sequences.
const SequenceLength = 5

// SequenceEntry maps one fixed byte sequence to a key transition.
type SequenceEntry struct {
	Usage   hidusage.Usage
	Press   bool
	Pattern [SequenceLength]byte
}

// Table is an ordered, immutable set of sequence entries. Patterns within a
// table are unique, so the first match is the only match.
type Table []SequenceEntry

// TableVariant selects the sequence table for a firmware generation. The two
// generations re-use overlapping byte encodings for different logical keys,
// so the variants must never be merged into one table.
type TableVariant uint8

const (
	// VariantProfileKeys covers the Vulcan 100/120 firmware: media keys
	// plus four profile-switch keys reported as F13..F16.
	VariantProfileKeys TableVariant = iota
	// VariantFXKeys covers the Vulcan TKL/Pro firmware: media keys plus
	// four macro/FX keys reported as F17..F20.
	VariantFXKeys
)

func (v TableVariant) String() string {
	switch v {
	case VariantProfileKeys:
		return "profile"
	case VariantFXKeys:
		return "fx"
	default:
		return "unknown"
	}
}

// TableFor returns the sequence table for a firmware generation.
func TableFor(variant TableVariant) Table {
	switch variant {
	case VariantFXKeys:
		return fxKeyTable
	default:
		return profileKeyTable
	}
}

func consumer(id uint16) hidusage.Usage {
	return hidusage.NewUsage(hidusage.Consumer, id)
}

func key(id uint16) hidusage.Usage {
	return hidusage.NewUsage(hidusage.KeyboardKeypad, id)
}

// Media keys are common to both firmware generations. Press and release
// differ only in the last byte.
func mediaKey(usage hidusage.Usage, id byte) []SequenceEntry {
	return []SequenceEntry{
		{Usage: usage, Press: true, Pattern: [SequenceLength]byte{0x03, 0x00, 0x0b, id, 0x00}},
		{Usage: usage, Press: false, Pattern: [SequenceLength]byte{0x03, 0x00, 0x0b, id, 0x01}},
	}
}

// Profile keys encode the transition in the third byte: 0x01 press, 0x02
// release.
func profileKey(usage hidusage.Usage, id byte) []SequenceEntry {
	return []SequenceEntry{
		{Usage: usage, Press: true, Pattern: [SequenceLength]byte{0x03, 0x00, 0x01, id, 0x00}},
		{Usage: usage, Press: false, Pattern: [SequenceLength]byte{0x03, 0x00, 0x02, id, 0x00}},
	}
}

// FX keys use the 0xfb prefix with the media-key press/release convention in
// the last byte.
func fxKey(usage hidusage.Usage, id byte) []SequenceEntry {
	return []SequenceEntry{
		{Usage: usage, Press: true, Pattern: [SequenceLength]byte{0x03, 0x00, 0xfb, id, 0x00}},
		{Usage: usage, Press: false, Pattern: [SequenceLength]byte{0x03, 0x00, 0xfb, id, 0x01}},
	}
}

func buildTable(groups ...[]SequenceEntry) Table {
	var t Table
	for _, g := range groups {
		t = append(t, g...)
	}
	return t
}

func mediaKeys() []SequenceEntry {
	return buildTable(
		mediaKey(consumer(hidusage.ScanPreviousTrack), 0x21),
		mediaKey(consumer(hidusage.ScanNextTrack), 0x22),
		mediaKey(consumer(hidusage.PlayPause), 0x23),
		mediaKey(consumer(hidusage.Stop), 0x24),
	)
}

var profileKeyTable = buildTable(
	mediaKeys(),
	profileKey(key(hidusage.KeyF13), 0x00),
	profileKey(key(hidusage.KeyF14), 0x01),
	profileKey(key(hidusage.KeyF15), 0x02),
	profileKey(key(hidusage.KeyF16), 0x03),
)

var fxKeyTable = buildTable(
	mediaKeys(),
	fxKey(key(hidusage.KeyF17), 0x00),
	fxKey(key(hidusage.KeyF18), 0x01),
	fxKey(key(hidusage.KeyF19), 0x02),
	fxKey(key(hidusage.KeyF20), 0x03),
)

// Usages returns the distinct usages appearing in the table, in table order.
func (t Table) Usages() []hidusage.Usage {
	seen := make(map[hidusage.Usage]struct{}, len(t))
	usages := make([]hidusage.Usage, 0, len(t)/2)
	for _, entry := range t {
		if _, ok := seen[entry.Usage]; ok {
			continue
		}
		seen[entry.Usage] = struct{}{}
		usages = append(usages, entry.Usage)
	}
	return usages
}
