package vulcan

import "github.com/vulcankb/vulcand/pkg/hidusage"

// VendorID is the Roccat USB vendor ID.
const VendorID uint16 = 0x1e7d

// Model describes one supported keyboard and the firmware generation it
// ships with.
type Model struct {
	Name      string
	ProductID uint16
	Variant   TableVariant
	// Interface is the USB interface carrying the 5-byte special-key
	// reports once the LED initialization sequence has been sent.
	Interface int
}

var models = []Model{
	{Name: "Vulcan 100 AIMO", ProductID: 0x3098, Variant: VariantProfileKeys, Interface: 2},
	{Name: "Vulcan 120 AIMO", ProductID: 0x307a, Variant: VariantProfileKeys, Interface: 2},
	{Name: "Vulcan TKL", ProductID: 0x2fee, Variant: VariantFXKeys, Interface: 2},
	{Name: "Vulcan Pro", ProductID: 0x30f7, Variant: VariantFXKeys, Interface: 2},
}

// LookupModel matches a vendor/product pair against the supported models.
func LookupModel(vendor, product uint16) (Model, bool) {
	if vendor != VendorID {
		return Model{}, false
	}
	for _, m := range models {
		if m.ProductID == product {
			return m, true
		}
	}
	return Model{}, false
}

// RoleForApplication classifies an interface by its HID application usage.
// The Vulcan's LED interface reports a vendor-defined page.
func RoleForApplication(page, usage uint16) Role {
	switch {
	case page == hidusage.GenericDesktop && usage == hidusage.AppKeyboard:
		return RoleKeyboard
	case page == hidusage.GenericDesktop && usage == hidusage.AppKeypad:
		return RoleKeypad
	case page == hidusage.Consumer && usage == hidusage.ConsumerControl:
		return RoleAuxKeyboard
	case page >= 0xff00:
		return RoleIndicator
	default:
		return RoleUnknown
	}
}
