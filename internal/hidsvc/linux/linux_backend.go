// Package linux implements the hidsvc transport backend on top of hidapi
// and udev.
package linux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jochenvg/go-udev"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sstallion/go-hid"
	"github.com/vulcankb/vulcand/internal/hidsvc"
	"go.uber.org/zap"
)

var defaultBackendOptions = backendOptions{
	pollInterval: 1 * time.Second,
}

type backendOptions struct {
	pollInterval time.Duration
}

type Option func(*backendOptions)

func WithPollInterval(d time.Duration) Option {
	return func(o *backendOptions) {
		o.pollInterval = d
	}
}

// Backend watches HID devices through hidapi and exposes them to hidsvc.
// Hotplug is detected by periodic re-enumeration.
type Backend struct {
	log     *zap.Logger
	options backendOptions

	devices *xsync.MapOf[Address, hid.DeviceInfo]
	udev    *udev.Udev
	ready   chan struct{}

	publisher hidsvc.BackendPublisher
}

// Address identifies one HID interface of one physical device.
type Address struct {
	VendorID  uint16
	ProductID uint16
	Interface int
}

func (a Address) String() string {
	return fmt.Sprintf("%04x:%04x:%d", a.VendorID, a.ProductID, a.Interface)
}

func ParseAddress(s string) (Address, error) {
	var addr Address
	_, err := fmt.Sscanf(s, "%04x:%04x:%d", &addr.VendorID, &addr.ProductID, &addr.Interface)
	if err != nil {
		return Address{}, fmt.Errorf("invalid device address %q: %w", s, err)
	}
	return addr, nil
}

func NewBackend(log *zap.Logger, opts ...Option) *Backend {
	options := defaultBackendOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Backend{
		log:     log,
		options: options,
		ready:   make(chan struct{}),
		devices: xsync.NewMapOf[Address, hid.DeviceInfo](),
	}
}

func (b *Backend) Ready() <-chan struct{} {
	return b.ready
}

func (b *Backend) Start(ctx context.Context, publisher hidsvc.BackendPublisher) error {
	hid.Init()
	b.udev = &udev.Udev{}
	b.publisher = publisher

	b.log.Info("Starting Linux HID backend")
	if err := b.refreshDevices(ctx); err != nil {
		return fmt.Errorf("failed to enumerate HID devices: %w", err)
	}
	close(b.ready)

	pollTicker := time.NewTicker(b.options.pollInterval)
	defer pollTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pollTicker.C:
			if err := b.refreshDevices(ctx); err != nil {
				b.log.Error("failed to refresh HID devices", zap.Error(err))
			}
		}
	}
}

func (b *Backend) refreshDevices(ctx context.Context) error {
	newDevices, err := b.enumerate()
	if err != nil {
		return err
	}
	var disconnected []string
	var connected []hidsvc.BackendDevice
	b.devices.Range(func(addr Address, info hid.DeviceInfo) bool {
		if _, ok := newDevices[addr]; !ok {
			disconnected = append(disconnected, addr.String())
			b.devices.Delete(addr)
			return true
		}
		delete(newDevices, addr)
		return true
	})
	for addr, info := range newDevices {
		b.devices.Store(addr, info)
		connected = append(connected, backendDevice(addr, info))
	}
	if len(connected) > 0 || len(disconnected) > 0 {
		b.publisher(ctx, hidsvc.BackendEvent{
			Connected:    connected,
			Disconnected: disconnected,
		})
	}
	return nil
}

func backendDevice(addr Address, info hid.DeviceInfo) hidsvc.BackendDevice {
	return hidsvc.BackendDevice{
		ID:        addr.String(),
		Name:      generateName(info),
		VendorID:  info.VendorID,
		ProductID: info.ProductID,
		Interface: info.InterfaceNbr,
		UsagePage: info.UsagePage,
		Usage:     info.Usage,
	}
}

func generateName(info hid.DeviceInfo) string {
	var parts []string
	if info.MfrStr != "" {
		parts = append(parts, info.MfrStr)
	}
	if info.ProductStr != "" {
		parts = append(parts, info.ProductStr)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%04x:%04x", info.VendorID, info.ProductID)
	}
	return strings.Join(parts, " ")
}

func (b *Backend) enumerate() (map[Address]hid.DeviceInfo, error) {
	devices := make(map[Address]hid.DeviceInfo)
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		addr := Address{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Interface: info.InterfaceNbr,
		}
		devices[addr] = *info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (b *Backend) OpenDevice(id string) (hidsvc.Device, error) {
	addr, err := ParseAddress(id)
	if err != nil {
		return nil, err
	}
	info, ok := b.devices.Load(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", hidsvc.ErrDeviceNotFound, id)
	}
	dev, err := hid.OpenPath(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", info.Path, err)
	}
	return &hidapiDevice{
		b:    b,
		log:  b.log,
		info: info,
		dev:  dev,
	}, nil
}

type hidapiDevice struct {
	b    *Backend
	log  *zap.Logger
	info hid.DeviceInfo
	dev  *hid.Device
}

func (h *hidapiDevice) Read(buf []byte) (int, error) {
	return h.dev.Read(buf)
}

func (h *hidapiDevice) Close() error {
	return h.dev.Close()
}

// Acquire detaches the generic kernel input handlers of this interface for
// the lifetime of the session and returns a function that re-attaches them.
// Once the firmware is in special-key mode the generic handlers only see
// the re-purposed reports, so leaving them attached would double-deliver
// any standard usages the interface still carries.
func (h *hidapiDevice) Acquire() (func(), error) {
	hidrawDev := h.b.udev.NewDeviceFromSubsystemSysname("hidraw", filepath.Base(h.info.Path))
	if hidrawDev == nil {
		return nil, fmt.Errorf("hidraw device %s not found in udev", h.info.Path)
	}
	hidDev := hidrawDev.Parent()
	e := h.b.udev.NewEnumerate()
	e.AddMatchSubsystem("input")
	e.AddMatchParent(hidDev)
	inputs, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate input devices: %w", err)
	}
	var detached []string
	for _, inputDev := range inputs {
		syspath := inputDev.Syspath()
		if !strings.HasPrefix(filepath.Base(syspath), "event") {
			continue
		}
		if err := os.WriteFile(syspath+"/uevent", []byte("remove"), 0644); err != nil {
			h.log.Error("failed to detach input handler", zap.String("syspath", syspath), zap.Error(err))
			continue
		}
		detached = append(detached, syspath)
	}
	return func() {
		for _, syspath := range detached {
			if err := os.WriteFile(syspath+"/uevent", []byte("add"), 0644); err != nil {
				h.log.Error("failed to re-attach input handler", zap.String("syspath", syspath), zap.Error(err))
			}
		}
	}, nil
}
