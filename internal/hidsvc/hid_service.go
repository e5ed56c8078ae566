// Package hidsvc owns the device lifecycle: it matches enumerated HID
// interfaces against the supported keyboard models, persists device
// metadata, and runs one decoding session per attached device.
package hidsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vulcankb/vulcand/internal/configsvc"
	"github.com/vulcankb/vulcand/internal/uhidsink"
	"github.com/vulcankb/vulcand/pkg/bus"
	"github.com/vulcankb/vulcand/vulcan"
	"go.uber.org/zap"
)

var ErrDeviceNotFound = errors.New("device not found")

type (
	BackendBus       = bus.Bus[string, BackendEvent]
	BackendPublisher = bus.Publisher[BackendEvent]
)

// BackendEvent reports devices appearing and disappearing on a transport
// backend.
type BackendEvent struct {
	Connected    []BackendDevice
	Disconnected []string
}

// BackendDevice describes one enumerated HID interface.
type BackendDevice struct {
	ID        string
	Name      string
	VendorID  uint16
	ProductID uint16
	Interface int
	UsagePage uint16
	Usage     uint16
}

// Backend is the transport collaborator: it enumerates devices and opens
// raw report streams. Device identification stays here in the service.
type Backend interface {
	Start(ctx context.Context, pub BackendPublisher) error
	Ready() <-chan struct{}
	OpenDevice(id string) (Device, error)
}

// Device is an open raw-report stream of one HID interface.
type Device interface {
	Read(buf []byte) (int, error)
	Close() error
	// Acquire detaches the generic kernel handlers of the interface and
	// returns a release function.
	Acquire() (func(), error)
}

// Config is the user-editable device configuration, live-reloaded from
// vulcand.yml.
type Config struct {
	Devices []DeviceConfig `json:"devices"`
}

type DeviceConfig struct {
	// Address is the vendor:product:interface triple, e.g. "1e7d:3098:2".
	Address string `json:"address"`
	// Name overrides the base display name of the virtual device.
	Name string `json:"name,omitempty"`
	// Disabled skips the device entirely.
	Disabled bool `json:"disabled,omitempty"`
	// Exclusive detaches the generic kernel input handlers of the
	// interface while the session runs.
	Exclusive bool `json:"exclusive,omitempty"`
}

var defaultOptions = serviceOptions{
	backoffTimeout: 5 * time.Second,
	reportBufSize:  64,
}

type serviceOptions struct {
	backoffTimeout time.Duration
	reportBufSize  int
}

type Option func(*serviceOptions)

func WithBackoffTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.backoffTimeout = d
	}
}

type Service struct {
	log        *zap.Logger
	db         *badger.DB
	options    serviceOptions
	now        func() time.Time
	ready      chan struct{}
	backend    Backend
	backendBus *BackendBus

	configSvc  *configsvc.Service
	configPath string
	overrides  *xsync.MapOf[string, DeviceConfig]

	sessions *xsync.MapOf[string, context.CancelFunc]
}

func New(db *badger.DB, log *zap.Logger, now func() time.Time, backend Backend, configSvc *configsvc.Service, configPath string, opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		db:         db,
		log:        log,
		options:    options,
		now:        now,
		ready:      make(chan struct{}),
		backend:    backend,
		backendBus: bus.NewBus[string, BackendEvent](log),
		configSvc:  configSvc,
		configPath: configPath,
		overrides:  xsync.NewMapOf[string, DeviceConfig](),
		sessions:   xsync.NewMapOf[string, context.CancelFunc](),
	}
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.backendBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start backend bus: %w", err)
	}
	select {
	case <-ctx.Done():
		return nil
	case <-s.backendBus.Ready():
	}

	select {
	case <-ctx.Done():
		return nil
	case <-s.configSvc.Ready():
	}
	cfg, err := configsvc.Register(s.configSvc, s.configPath, Config{}, func(cfg Config, err error) {
		s.onConfigChange(cfg, err)
	})
	if err != nil {
		return fmt.Errorf("failed to register device config: %w", err)
	}
	s.applyConfig(cfg)

	s.consumeEvents(ctx)
	go s.runBackend(ctx)
	select {
	case <-ctx.Done():
		return nil
	case <-s.backend.Ready():
	}
	close(s.ready)
	s.log.Info("HID service started")
	<-ctx.Done()
	return nil
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) runBackend(ctx context.Context) {
	for {
		err := s.backend.Start(ctx, s.backendBus.CreatePublisher("linux"))
		if err != nil {
			s.log.Error("failed to start the backend", zap.Error(err))
		}
		t := time.NewTimer(s.options.backoffTimeout)
		// retry after backoff
		select {
		case <-ctx.Done():
			if !t.Stop() {
				<-t.C
			}
			return
		case <-t.C:
		}
	}
}

func (s *Service) consumeEvents(ctx context.Context) {
	go func() {
		ch := s.backendBus.Subscribe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				s.handleBackendEvent(ctx, msg.Message)
			}
		}
	}()
}

func (s *Service) onConfigChange(cfg Config, err error) {
	if err != nil {
		s.log.Error("failed to reload device config", zap.Error(err))
		return
	}
	s.applyConfig(cfg)
	s.log.Info("device config reloaded", zap.Int("overrides", len(cfg.Devices)))
}

func (s *Service) applyConfig(cfg Config) {
	s.overrides.Clear()
	for _, dev := range cfg.Devices {
		s.overrides.Store(dev.Address, dev)
	}
}

func (s *Service) handleBackendEvent(ctx context.Context, event BackendEvent) {
	for _, id := range event.Disconnected {
		s.onDisconnected(id)
	}
	for _, dev := range event.Connected {
		s.onConnected(ctx, dev)
	}
}

func (s *Service) onDisconnected(id string) {
	if cancel, ok := s.sessions.LoadAndDelete(id); ok {
		s.log.Info("device detached", zap.String("id", id))
		cancel()
	}
}

func (s *Service) onConnected(ctx context.Context, bdev BackendDevice) {
	model, ok := vulcan.LookupModel(bdev.VendorID, bdev.ProductID)
	if !ok {
		return
	}
	if err := s.persistDevice(bdev); err != nil {
		s.log.Error("failed to persist device", zap.Error(err))
	}
	if bdev.Interface != model.Interface {
		// Other interfaces stay on the generic kernel path.
		s.log.Debug("skipping non-special interface",
			zap.String("id", bdev.ID),
			zap.String("model", model.Name),
		)
		return
	}
	override, _ := s.overrides.Load(bdev.ID)
	if override.Disabled {
		s.log.Info("device disabled by config", zap.String("id", bdev.ID))
		return
	}
	s.log.Info("device attached",
		zap.String("id", bdev.ID),
		zap.String("model", model.Name),
		zap.String("variant", model.Variant.String()),
	)
	sessCtx, cancel := context.WithCancel(ctx)
	s.sessions.Store(bdev.ID, cancel)
	go func() {
		defer s.onDisconnected(bdev.ID)
		if err := s.runSession(sessCtx, bdev, model, override); err != nil {
			s.log.Error("device session failed", zap.String("id", bdev.ID), zap.Error(err))
		}
	}()
}

// runSession drives one device connection: configure once, then decode
// every raw report until detach.
func (s *Service) runSession(ctx context.Context, bdev BackendDevice, model vulcan.Model, override DeviceConfig) error {
	dev, err := s.backend.OpenDevice(bdev.ID)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer dev.Close()

	if override.Exclusive {
		release, err := dev.Acquire()
		if err != nil {
			s.log.Warn("failed to detach generic handlers", zap.Error(err))
		} else {
			defer release()
		}
	}

	baseName := override.Name
	if baseName == "" {
		baseName = bdev.Name
	}
	log := s.log.Named("session").With(zap.String("id", bdev.ID))
	sink := uhidsink.New(log.Named("uhid"), baseName, bdev.VendorID, bdev.ProductID)
	defer sink.Close()

	sess := vulcan.NewSession(log, vulcan.TableFor(model.Variant))
	sess.Configure(sink, vulcan.RoleForApplication(bdev.UsagePage, bdev.Usage))
	if err := sink.Start(ctx); err != nil {
		return fmt.Errorf("failed to start input sink: %w", err)
	}

	reports := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(reports)
		for {
			buf := make([]byte, s.options.reportBufSize)
			n, err := dev.Read(buf)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case <-ctx.Done():
				return
			case reports <- buf[:n]:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return fmt.Errorf("read failed: %w", err)
		case report := <-reports:
			if !sess.HandleRawReport(report) {
				log.Debug("report left to generic path", zap.Int("size", len(report)))
			}
		}
	}
}

// SeenDevice is the persisted record of a matched device.
type SeenDevice struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	VendorID    uint16    `json:"vendorId"`
	ProductID   uint16    `json:"productId"`
	Model       string    `json:"model"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

func deviceKey(id string) []byte {
	return []byte("devices/" + id)
}

func (s *Service) persistDevice(bdev BackendDevice) error {
	now := s.now()
	return s.db.Update(func(txn *badger.Txn) error {
		var dev SeenDevice
		key := deviceKey(bdev.ID)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &dev)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal device: %w", err)
			}
		}
		dev.ID = bdev.ID
		dev.Name = bdev.Name
		dev.VendorID = bdev.VendorID
		dev.ProductID = bdev.ProductID
		if model, ok := vulcan.LookupModel(bdev.VendorID, bdev.ProductID); ok {
			dev.Model = model.Name
		}
		if dev.FirstSeenAt.IsZero() {
			dev.FirstSeenAt = now
		}
		dev.LastSeenAt = now
		b, err := json.Marshal(dev)
		if err != nil {
			return fmt.Errorf("failed to marshal device: %w", err)
		}
		return txn.Set(key, b)
	})
}

// ListDevices returns every matched device ever seen by the agent.
func (s *Service) ListDevices() ([]SeenDevice, error) {
	var devices []SeenDevice
	err := s.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		prefix := []byte("devices/")
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var dev SeenDevice
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &dev)
			})
			if err != nil {
				return err
			}
			devices = append(devices, dev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}
