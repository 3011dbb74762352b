// internal/services/event_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/models"
)

// EventService is the ledger's event sink. Every event is logged; when the
// archive is enabled events are also queued and written in batches to storage
// for external indexers. Publish never blocks: a full queue drops the event.
type EventService struct {
	storage  *StorageService
	db       *gorm.DB
	prefix   string
	archive  bool
	batch    int
	interval time.Duration

	queue   chan ledger.Event
	dropped atomic.Uint64
	done    chan struct{}
	once    sync.Once
}

type archiveObject struct {
	Events []ledger.Event `json:"events"`
}

func NewEventService(storage *StorageService, db *gorm.DB, cfg config.EventsConfig) *EventService {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1024
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &EventService{
		storage:  storage,
		db:       db,
		prefix:   cfg.ArchivePrefix,
		archive:  cfg.ArchiveEnabled && storage != nil,
		batch:    size,
		interval: interval,
		queue:    make(chan ledger.Event, size),
		done:     make(chan struct{}),
	}
}

func (s *EventService) Publish(ev ledger.Event) {
	fields := logrus.Fields{
		"event":      ev.Kind,
		"event_id":   ev.ID.String(),
		"collection": ev.Collection.Hex(),
	}
	if ev.TokenID != 0 {
		fields["token_id"] = ev.TokenID
	}
	if ev.BatchID != "" {
		fields["batch_id"] = ev.BatchID
	}
	if ev.Price != nil {
		fields["amount"] = ev.Price.String()
	}
	if ev.Settlement != nil {
		fields["platform_amount"] = ev.Settlement.Split.PlatformAmount.String()
		fields["gallery_amount"] = ev.Settlement.Split.GalleryAmount.String()
		fields["seller_amount"] = ev.Settlement.Split.SellerAmount.String()
	}
	logrus.WithFields(fields).Info("Ledger event")

	if !s.archive {
		return
	}
	select {
	case s.queue <- ev:
	default:
		n := s.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"event":   ev.Kind,
			"dropped": n,
		}).Warn("Event archive queue full, event dropped")
	}
}

// Dropped reports how many events the archive could not keep up with.
func (s *EventService) Dropped() uint64 {
	return s.dropped.Load()
}

// Run archives queued events until ctx is cancelled, then flushes what is left.
func (s *EventService) Run(ctx context.Context) {
	defer s.once.Do(func() { close(s.done) })
	if !s.archive {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	pending := make([]ledger.Event, 0, s.batch)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := s.Flush(context.Background(), pending); err != nil {
			logrus.WithError(err).WithField("events", len(pending)).Error("Event archive flush failed")
		}
		pending = make([]ledger.Event, 0, s.batch)
	}

	for {
		select {
		case ev := <-s.queue:
			pending = append(pending, ev)
			if len(pending) >= s.batch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for {
				select {
				case ev := <-s.queue:
					pending = append(pending, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (s *EventService) Done() <-chan struct{} {
	return s.done
}

// Flush writes events as one archive object and records it when a database is set.
func (s *EventService) Flush(ctx context.Context, events []ledger.Event) error {
	if len(events) == 0 {
		return nil
	}

	body, err := json.Marshal(archiveObject{Events: events})
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	key := ArchiveKey(s.prefix, events[0].At)
	record := &models.EventArchive{
		ObjectKey:  key,
		EventCount: len(events),
		FirstAt:    events[0].At,
		LastAt:     events[len(events)-1].At,
		Status:     models.EventStatusArchived,
	}

	_, putErr := s.storage.PutObject(key, body, "application/json")
	if putErr != nil {
		record.Status = models.EventStatusFailed
		record.Error = putErr.Error()
	}

	if s.db != nil {
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			logrus.WithError(err).WithField("object_key", key).Warn("Failed to record event archive")
		}
	}

	if putErr != nil {
		return putErr
	}

	logrus.WithFields(logrus.Fields{
		"object_key": key,
		"events":     len(events),
	}).Debug("Events archived")
	return nil
}
