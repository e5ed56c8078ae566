// Package agent wires the vulcand services together.
package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/vulcankb/vulcand/internal/configsvc"
	"github.com/vulcankb/vulcand/internal/hidsvc"
	"github.com/vulcankb/vulcand/internal/hidsvc/linux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type Agent struct {
	config Config

	db        *badger.DB
	configSvc *configsvc.Service
	hidSvc    *hidsvc.Service
}

func NewAgent(config Config) (*Agent, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbOptions := badger.DefaultOptions(filepath.Join(config.DataDir, "db"))
	dbOptions.Logger = &badgerLogger{l: logger.Named("badger")}
	db, err := badger.Open(dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	configSvc := configsvc.New(logger.Named("config"))
	backend := linux.NewBackend(logger.Named("hid.linux"))
	hidSvc := hidsvc.New(db, logger.Named("hid"), time.Now, backend, configSvc, config.DeviceConfig)

	return &Agent{
		config:    config,
		db:        db,
		configSvc: configSvc,
		hidSvc:    hidSvc,
	}, nil
}

func (a *Agent) Close() error {
	return a.db.Close()
}

// Run starts the agent and blocks until the context is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.configSvc.Start(groupCtx)
	})
	group.Go(func() error {
		return a.hidSvc.Start(groupCtx)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	return nil
}

func (a *Agent) HID() *hidsvc.Service {
	return a.hidSvc
}

type badgerLogger struct {
	l *zap.Logger
}

func (l badgerLogger) Errorf(msg string, args ...any) {
	l.l.Error(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Warningf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Infof(msg string, args ...any) {
	l.l.Info(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Debugf(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}
