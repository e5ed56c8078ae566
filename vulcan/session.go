package vulcan

import (
	"github.com/vulcankb/vulcand/pkg/hidusage"
	"go.uber.org/zap"
)

// InputSink is the logical input device decoded key events are delivered to.
// It is provided by the surrounding agent (a uhid-backed virtual device in
// production, a fake in tests).
type InputSink interface {
	Name() string
	SetName(name string)
	// EnableKey declares that the device may report the given usage.
	// Consumers reject events for usages that were not declared.
	EnableKey(usage hidusage.Usage)
	EmitKey(usage hidusage.Usage, pressed bool) error
	// Sync marks all pending state changes as coherent for consumers.
	Sync() error
}

// Role classifies the logical input surface a device interface exposes.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleKeyboard
	RoleAuxKeyboard
	RoleKeypad
	RoleIndicator
)

func (r Role) String() string {
	switch r {
	case RoleKeyboard:
		return "keyboard"
	case RoleAuxKeyboard:
		return "aux-keyboard"
	case RoleKeypad:
		return "keypad"
	case RoleIndicator:
		return "indicator"
	default:
		return "unknown"
	}
}

// suffix returns the display-name suffix for a role, or "" when the role is
// not recognized and the name must stay unchanged.
func (r Role) suffix() string {
	switch r {
	case RoleKeyboard:
		return " Main Keyboard"
	case RoleAuxKeyboard:
		return " Extra Keys"
	case RoleKeypad:
		return " Keypad"
	case RoleIndicator:
		return " LEDs"
	default:
		return ""
	}
}

// Session is the per-connection decoding state of one physical device. It is
// owned by the device's transport loop: Configure runs once before any
// report is handled, HandleRawReport runs once per raw report, and the
// session is discarded at detach. A session is never shared across devices.
type Session struct {
	log   *zap.Logger
	table Table
	sink  InputSink
}

func NewSession(log *zap.Logger, table Table) *Session {
	return &Session{
		log:   log,
		table: table,
	}
}

// Configure prepares the logical input device: it declares every usage the
// active table may emit, derives the display name from the device role, and
// stores the sink for the decode path. A name that cannot be derived (the
// role is unrecognized) leaves the original name untouched; configuration
// itself never fails.
func (s *Session) Configure(sink InputSink, role Role) {
	for _, usage := range s.table.Usages() {
		sink.EnableKey(usage)
	}
	if suffix := role.suffix(); suffix != "" {
		sink.SetName(sink.Name() + suffix)
	}
	s.sink = sink
	s.log.Debug("session configured",
		zap.String("role", role.String()),
		zap.String("name", sink.Name()),
		zap.Int("usages", len(s.table.Usages())),
	)
}

// HandleRawReport decodes one raw report. When the report is a special-key
// sequence it emits exactly one key event followed by one sync and returns
// true, meaning the report is fully consumed. It returns false when the
// report must fall through to the generic report path: wrong length, no
// pattern match, or a report arriving before Configure has run.
func (s *Session) HandleRawReport(data []byte) bool {
	entry, ok := s.table.Decode(data)
	if !ok {
		return false
	}
	if s.sink == nil {
		// Reports must not arrive before configuration. Drop to the
		// generic path instead of crashing.
		s.log.Warn("special-key report before configuration", zap.String("usage", entry.Usage.String()))
		return false
	}
	if err := s.sink.EmitKey(entry.Usage, entry.Press); err != nil {
		s.log.Error("failed to emit key event", zap.String("usage", entry.Usage.String()), zap.Error(err))
		return true
	}
	if err := s.sink.Sync(); err != nil {
		s.log.Error("failed to sync input device", zap.Error(err))
	}
	return true
}
