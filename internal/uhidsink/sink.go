// Package uhidsink exposes decoded key events to the host input subsystem
// through a virtual HID device backed by the Linux uhid kernel module.
package uhidsink

import (
	"context"
	"errors"
	"fmt"

	"github.com/psanford/uhid"
	"github.com/vulcankb/vulcand/pkg/hidusage"
	"go.uber.org/zap"
)

var (
	ErrNotStarted   = errors.New("uhid device not started")
	ErrUnknownUsage = errors.New("usage was not declared on the device")
)

// Sink collects the declared usages and display name during device
// configuration, then creates the uhid device on Start. EmitKey and Sync
// update and flush the input report; both are called from the single
// per-device report loop, so the sink needs no locking.
type Sink struct {
	log       *zap.Logger
	name      string
	vendorID  uint32
	productID uint32

	usages []hidusage.Usage
	index  map[hidusage.Usage]int

	dev    *uhid.Device
	events chan uhid.Event
	state  []byte
}

func New(log *zap.Logger, name string, vendorID, productID uint16) *Sink {
	return &Sink{
		log:       log,
		name:      name,
		vendorID:  uint32(vendorID),
		productID: uint32(productID),
		index:     make(map[hidusage.Usage]int),
	}
}

func (s *Sink) Name() string {
	return s.name
}

func (s *Sink) SetName(name string) {
	if s.dev != nil {
		s.log.Warn("ignoring rename after device creation", zap.String("name", name))
		return
	}
	s.name = name
}

// EnableKey declares a usage the device may report. Declarations after
// Start are ignored since the report descriptor is already published.
func (s *Sink) EnableKey(usage hidusage.Usage) {
	if s.dev != nil {
		s.log.Warn("ignoring key declaration after device creation", zap.String("usage", usage.String()))
		return
	}
	if _, ok := s.index[usage]; ok {
		return
	}
	s.index[usage] = len(s.usages)
	s.usages = append(s.usages, usage)
}

// Start creates and opens the uhid device with the declared usages and
// name. It must run after configuration and before any report is handled.
func (s *Sink) Start(ctx context.Context) error {
	if len(s.usages) == 0 {
		return errors.New("no usages declared")
	}
	descriptor := buildDescriptor(s.usages)
	dev, err := uhid.NewDevice(s.name, descriptor)
	if err != nil {
		return fmt.Errorf("failed to create uhid device: %w", err)
	}
	dev.Data.Bus = 0x03
	dev.Data.VendorID = s.vendorID
	dev.Data.ProductID = s.productID

	events, err := dev.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open uhid device: %w", err)
	}
	s.dev = dev
	s.events = events
	s.state = make([]byte, reportBytes(len(s.usages)))
	go s.drainEvents(ctx)
	s.log.Info("uhid device created",
		zap.String("name", s.name),
		zap.Int("usages", len(s.usages)),
	)
	return nil
}

// drainEvents consumes kernel-to-device events. The device is input-only,
// so output and report requests are only logged.
func (s *Sink) drainEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.log.Debug("uhid event", zap.Any("type", ev.Type))
		}
	}
}

func (s *Sink) EmitKey(usage hidusage.Usage, pressed bool) error {
	if s.dev == nil {
		return ErrNotStarted
	}
	idx, ok := s.index[usage]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUsage, usage)
	}
	if pressed {
		s.state[idx/8] |= 1 << (idx % 8)
	} else {
		s.state[idx/8] &^= 1 << (idx % 8)
	}
	return nil
}

// Sync publishes the current report, making all key state changes since the
// previous Sync visible to consumers at once.
func (s *Sink) Sync() error {
	if s.dev == nil {
		return ErrNotStarted
	}
	if err := s.dev.InjectEvent(s.state); err != nil {
		return fmt.Errorf("failed to inject input report: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.dev == nil {
		return nil
	}
	return s.dev.Close()
}
