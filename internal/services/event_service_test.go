// internal/services/event_service_test.go
package services

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
)

func archivedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func testEvent(kind ledger.EventKind, tokenID uint64) ledger.Event {
	return ledger.Event{
		ID:         uuid.New(),
		Kind:       kind,
		Collection: artist,
		TokenID:    tokenID,
		At:         time.Now(),
	}
}

func TestEventServiceWithoutArchiveOnlyLogs(t *testing.T) {
	events := NewEventService(nil, nil, config.EventsConfig{ArchiveEnabled: true, BufferSize: 1})

	events.Publish(testEvent(ledger.EventAssetMinted, 1))
	events.Publish(testEvent(ledger.EventAssetMinted, 2))
	assert.Zero(t, events.Dropped())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events.Run(ctx)
	<-events.Done()
}

func TestEventServiceFlushWritesObject(t *testing.T) {
	dir := t.TempDir()
	events := NewEventService(NewLocalStorageService(dir), nil, config.EventsConfig{
		ArchiveEnabled: true,
		ArchivePrefix:  "events",
	})

	batch := []ledger.Event{testEvent(ledger.EventAssetMinted, 1), testEvent(ledger.EventAssetListed, 1)}
	require.NoError(t, events.Flush(context.Background(), batch))
	require.NoError(t, events.Flush(context.Background(), nil))

	files := archivedFiles(t, dir)
	require.Len(t, files, 1)

	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var obj archiveObject
	require.NoError(t, json.Unmarshal(body, &obj))
	require.Len(t, obj.Events, 2)
	assert.Equal(t, ledger.EventAssetListed, obj.Events[1].Kind)
}

func TestEventServiceDropsWhenQueueFull(t *testing.T) {
	events := NewEventService(NewLocalStorageService(t.TempDir()), nil, config.EventsConfig{
		ArchiveEnabled: true,
		BufferSize:     2,
	})

	for i := uint64(1); i <= 5; i++ {
		events.Publish(testEvent(ledger.EventAssetMinted, i))
	}
	assert.Equal(t, uint64(3), events.Dropped())
}

func TestEventServiceRunFlushesOnShutdown(t *testing.T) {
	dir := t.TempDir()
	events := NewEventService(NewLocalStorageService(dir), nil, config.EventsConfig{
		ArchiveEnabled: true,
		ArchivePrefix:  "events",
		BufferSize:     16,
		FlushInterval:  time.Hour,
	})

	for i := uint64(1); i <= 3; i++ {
		events.Publish(testEvent(ledger.EventAssetMinted, i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go events.Run(ctx)
	cancel()

	select {
	case <-events.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("event service did not stop")
	}

	var total int
	for _, f := range archivedFiles(t, dir) {
		body, err := os.ReadFile(f)
		require.NoError(t, err)
		var obj archiveObject
		require.NoError(t, json.Unmarshal(body, &obj))
		total += len(obj.Events)
	}
	assert.Equal(t, 3, total)
}

func TestLedgerPublishesThroughEventService(t *testing.T) {
	dir := t.TempDir()
	events := NewEventService(NewLocalStorageService(dir), nil, config.EventsConfig{
		ArchiveEnabled: true,
		ArchivePrefix:  "events",
		BufferSize:     64,
	})
	roles := ledger.NewRoleBook(operator)
	registry, err := ledger.NewRegistry(ledger.RegistryOptions{
		Treasury: treasury,
		Gallery:  gallery,
		Template: ledger.Template{
			Fees:     ledger.DefaultFeeSchedule(),
			Auth:     roles,
			Payments: ledger.NewVault(nil, events),
			Sink:     events,
		},
	})
	require.NoError(t, err)

	svc := NewRegistryService(registry, testConfig())
	view, err := svc.DeployCollection(context.Background(), operator, &DeployCollectionRequest{
		ArtistAddress: artist.Hex(),
		ArtistName:    "Ada",
		Name:          "Ada Originals",
		Symbol:        "ADA",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, view.Ref)

	ctx, cancel := context.WithCancel(context.Background())
	go events.Run(ctx)
	cancel()
	<-events.Done()

	files := archivedFiles(t, dir)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), string(ledger.EventCollectionCreated))
}
