package uhidsink

import "github.com/vulcankb/vulcand/pkg/hidusage"

// Report descriptor item prefixes (tag | type | size).
const (
	itemUsagePage      = 0x05
	itemUsage          = 0x09
	itemUsageExtended  = 0x0b // 4-byte usage carrying its own page
	itemLogicalMin     = 0x15
	itemLogicalMax     = 0x25
	itemReportSize     = 0x75
	itemReportCount    = 0x95
	itemInput          = 0x81
	itemCollection     = 0xa1
	itemEndCollection  = 0xc0
	collectionApp      = 0x01
	inputDataVarAbs    = 0x02
	inputConstVarAbs   = 0x03
)

// buildDescriptor encodes a report descriptor for a virtual device that
// reports each usage as a one-bit variable field, in the given order,
// padded to a byte boundary. The single input report has no report ID.
func buildDescriptor(usages []hidusage.Usage) []byte {
	d := make([]byte, 0, 16+5*len(usages))
	d = append(d,
		itemUsagePage, byte(hidusage.Consumer),
		itemUsage, byte(hidusage.ConsumerControl),
		itemCollection, collectionApp,
		itemLogicalMin, 0x00,
		itemLogicalMax, 0x01,
		itemReportSize, 0x01,
		itemReportCount, byte(len(usages)),
	)
	for _, u := range usages {
		d = append(d, itemUsageExtended,
			byte(u.ID()), byte(u.ID()>>8),
			byte(u.Page()), byte(u.Page()>>8),
		)
	}
	d = append(d, itemInput, inputDataVarAbs)
	if pad := (8 - len(usages)%8) % 8; pad > 0 {
		d = append(d,
			itemReportSize, 0x01,
			itemReportCount, byte(pad),
			itemInput, inputConstVarAbs,
		)
	}
	d = append(d, itemEndCollection)
	return d
}

// reportBytes is the size of the input report for the given usage count.
func reportBytes(usages int) int {
	return (usages + 7) / 8
}
