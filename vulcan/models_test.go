package vulcan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulcankb/vulcand/pkg/hidusage"
)

func TestLookupModel(t *testing.T) {
	m, ok := LookupModel(VendorID, 0x3098)
	require.True(t, ok)
	assert.Equal(t, "Vulcan 100 AIMO", m.Name)
	assert.Equal(t, VariantProfileKeys, m.Variant)

	m, ok = LookupModel(VendorID, 0x2fee)
	require.True(t, ok)
	assert.Equal(t, VariantFXKeys, m.Variant)

	_, ok = LookupModel(VendorID, 0xffff)
	assert.False(t, ok)

	_, ok = LookupModel(0x046d, 0x3098)
	assert.False(t, ok)
}

func TestRoleForApplication(t *testing.T) {
	assert.Equal(t, RoleKeyboard, RoleForApplication(hidusage.GenericDesktop, hidusage.AppKeyboard))
	assert.Equal(t, RoleKeypad, RoleForApplication(hidusage.GenericDesktop, hidusage.AppKeypad))
	assert.Equal(t, RoleAuxKeyboard, RoleForApplication(hidusage.Consumer, hidusage.ConsumerControl))
	assert.Equal(t, RoleIndicator, RoleForApplication(0xff01, 0x01))
	assert.Equal(t, RoleUnknown, RoleForApplication(hidusage.GenericDesktop, 0x02))
}
