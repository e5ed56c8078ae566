package uhidsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulcankb/vulcand/pkg/hidusage"
)

func TestBuildDescriptor(t *testing.T) {
	usages := []hidusage.Usage{
		hidusage.NewUsage(hidusage.Consumer, hidusage.PlayPause),
		hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF13),
	}
	d := buildDescriptor(usages)

	require.Equal(t, byte(itemUsagePage), d[0])
	require.Equal(t, byte(hidusage.Consumer), d[1])
	assert.Equal(t, byte(itemEndCollection), d[len(d)-1])

	// Extended usage items carry the full page+ID.
	assert.Contains(t, string(d), string([]byte{itemUsageExtended, 0xcd, 0x00, 0x0c, 0x00}))
	assert.Contains(t, string(d), string([]byte{itemUsageExtended, 0x68, 0x00, 0x07, 0x00}))

	// Two one-bit fields padded with six constant bits.
	assert.Contains(t, string(d), string([]byte{itemReportCount, 2}))
	assert.Contains(t, string(d), string([]byte{itemReportCount, 6, itemInput, inputConstVarAbs}))
}

func TestReportBytes(t *testing.T) {
	assert.Equal(t, 1, reportBytes(1))
	assert.Equal(t, 1, reportBytes(8))
	assert.Equal(t, 2, reportBytes(9))
	assert.Equal(t, 2, reportBytes(12))
}
