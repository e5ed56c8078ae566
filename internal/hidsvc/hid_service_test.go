package hidsvc

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestPersistDeviceFirstAndLastSeen(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := New(db, zaptest.NewLogger(t), func() time.Time { return now }, nil, nil, "")

	bdev := BackendDevice{
		ID:        "1e7d:3098:2",
		Name:      "ROCCAT Vulcan AIMO",
		VendorID:  0x1e7d,
		ProductID: 0x3098,
		Interface: 2,
	}
	require.NoError(t, svc.persistDevice(bdev))

	devices, err := svc.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "1e7d:3098:2", devices[0].ID)
	assert.Equal(t, "Vulcan 100 AIMO", devices[0].Model)
	assert.Equal(t, now, devices[0].FirstSeenAt.UTC())

	// A later reconnect keeps firstSeenAt and advances lastSeenAt.
	now = now.Add(time.Hour)
	require.NoError(t, svc.persistDevice(bdev))
	devices, err = svc.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, now.Add(-time.Hour), devices[0].FirstSeenAt.UTC())
	assert.Equal(t, now, devices[0].LastSeenAt.UTC())
}

func TestApplyConfigOverrides(t *testing.T) {
	db := openTestDB(t)
	svc := New(db, zaptest.NewLogger(t), time.Now, nil, nil, "")

	svc.applyConfig(Config{Devices: []DeviceConfig{
		{Address: "1e7d:3098:2", Name: "Left Vulcan", Exclusive: true},
		{Address: "1e7d:307a:2", Disabled: true},
	}})

	override, ok := svc.overrides.Load("1e7d:3098:2")
	require.True(t, ok)
	assert.Equal(t, "Left Vulcan", override.Name)
	assert.True(t, override.Exclusive)

	override, ok = svc.overrides.Load("1e7d:307a:2")
	require.True(t, ok)
	assert.True(t, override.Disabled)

	// A reload replaces the whole override set.
	svc.applyConfig(Config{})
	_, ok = svc.overrides.Load("1e7d:3098:2")
	assert.False(t, ok)
}
