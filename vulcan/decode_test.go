package vulcan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulcankb/vulcand/pkg/hidusage"
)

func TestDecodeLengthMismatch(t *testing.T) {
	table := TableFor(VariantProfileKeys)
	reports := [][]byte{
		nil,
		{},
		{0x01, 0x02, 0x03},
		{0x03, 0x00, 0x0b, 0x21},
		{0x03, 0x00, 0x0b, 0x21, 0x00, 0x00},
		make([]byte, 64),
	}
	for _, report := range reports {
		_, ok := table.Decode(report)
		assert.False(t, ok, "report of length %d must not be handled", len(report))
	}
}

func TestDecodeEveryEntry(t *testing.T) {
	for _, variant := range []TableVariant{VariantProfileKeys, VariantFXKeys} {
		table := TableFor(variant)
		for _, entry := range table {
			decoded, ok := table.Decode(entry.Pattern[:])
			require.True(t, ok, "%s: pattern %x", variant, entry.Pattern)
			assert.Equal(t, entry.Usage, decoded.Usage)
			assert.Equal(t, entry.Press, decoded.Press)
		}
	}
}

func TestDecodeUnknownPattern(t *testing.T) {
	table := TableFor(VariantProfileKeys)
	reports := [][]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00},
		{0x03, 0x00, 0x0b, 0xff, 0x00},
		{0x04, 0x00, 0x0b, 0x21, 0x00},
		// FX-key pattern on the profile-key firmware.
		{0x03, 0x00, 0xfb, 0x00, 0x00},
	}
	for _, report := range reports {
		_, ok := table.Decode(report)
		assert.False(t, ok, "pattern %x must not be handled", report)
	}
}

func TestDecodePreviousTrack(t *testing.T) {
	table := TableFor(VariantProfileKeys)
	prev := hidusage.NewUsage(hidusage.Consumer, hidusage.ScanPreviousTrack)

	entry, ok := table.Decode([]byte{0x03, 0x00, 0x0b, 0x21, 0x00})
	require.True(t, ok)
	assert.Equal(t, prev, entry.Usage)
	assert.True(t, entry.Press)

	entry, ok = table.Decode([]byte{0x03, 0x00, 0x0b, 0x21, 0x01})
	require.True(t, ok)
	assert.Equal(t, prev, entry.Usage)
	assert.False(t, entry.Press)
}

func TestDecodeFXKeys(t *testing.T) {
	table := TableFor(VariantFXKeys)

	entry, ok := table.Decode([]byte{0x03, 0x00, 0xfb, 0x00, 0x00})
	require.True(t, ok)
	assert.Equal(t, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF17), entry.Usage)
	assert.True(t, entry.Press)

	// Profile-key pattern on the FX firmware.
	_, ok = table.Decode([]byte{0x03, 0x00, 0x01, 0x00, 0x00})
	assert.False(t, ok)
}
