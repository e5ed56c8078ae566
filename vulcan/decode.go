package vulcan

import "bytes"

// Decode matches one raw report against the table. It returns the matched
// entry and true when the report is a special-key sequence, or false when
// the report must fall through to the generic report path. A report of any
// length other than SequenceLength never matches.
//
// The scan is a linear pass in table order with exact byte comparison;
// the first match wins.
func (t Table) Decode(data []byte) (SequenceEntry, bool) {
	if len(data) != SequenceLength {
		return SequenceEntry{}, false
	}
	for _, entry := range t {
		if bytes.Equal(data, entry.Pattern[:]) {
			return entry, true
		}
	}
	return SequenceEntry{}, false
}
