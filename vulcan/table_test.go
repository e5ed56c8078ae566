package vulcan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vulcankb/vulcand/pkg/hidusage"
)

func TestTablePatternsUnique(t *testing.T) {
	for _, variant := range []TableVariant{VariantProfileKeys, VariantFXKeys} {
		table := TableFor(variant)
		seen := make(map[[SequenceLength]byte]SequenceEntry, len(table))
		for _, entry := range table {
			prev, ok := seen[entry.Pattern]
			assert.False(t, ok, "%s: pattern %x maps to both %s and %s",
				variant, entry.Pattern, prev.Usage, entry.Usage)
			seen[entry.Pattern] = entry
		}
	}
}

func TestTableUsagesNonZero(t *testing.T) {
	for _, variant := range []TableVariant{VariantProfileKeys, VariantFXKeys} {
		for _, entry := range TableFor(variant) {
			assert.NotZero(t, entry.Usage, "%s: pattern %x", variant, entry.Pattern)
		}
	}
}

func TestTablePairsPressAndRelease(t *testing.T) {
	for _, variant := range []TableVariant{VariantProfileKeys, VariantFXKeys} {
		table := TableFor(variant)
		transitions := make(map[hidusage.Usage]map[bool]int)
		for _, entry := range table {
			if transitions[entry.Usage] == nil {
				transitions[entry.Usage] = make(map[bool]int)
			}
			transitions[entry.Usage][entry.Press]++
		}
		for usage, byPress := range transitions {
			assert.Equal(t, 1, byPress[true], "%s: %s press entries", variant, usage)
			assert.Equal(t, 1, byPress[false], "%s: %s release entries", variant, usage)
		}
	}
}

func TestTableVariantKeys(t *testing.T) {
	profile := TableFor(VariantProfileKeys).Usages()
	fx := TableFor(VariantFXKeys).Usages()

	assert.Contains(t, profile, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF13))
	assert.Contains(t, profile, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF16))
	assert.NotContains(t, profile, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF17))

	assert.Contains(t, fx, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF17))
	assert.Contains(t, fx, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF20))
	assert.NotContains(t, fx, hidusage.NewUsage(hidusage.KeyboardKeypad, hidusage.KeyF13))

	// Media keys are common to both generations.
	for _, table := range [][]hidusage.Usage{profile, fx} {
		assert.Contains(t, table, hidusage.NewUsage(hidusage.Consumer, hidusage.PlayPause))
		assert.Contains(t, table, hidusage.NewUsage(hidusage.Consumer, hidusage.ScanNextTrack))
	}
}
