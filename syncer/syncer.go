package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"dealer_sync/models"
	"dealer_sync/scraper"
	"dealer_sync/storage"
)

// Source is the upstream marketplace.
type Source interface {
	FetchDealerListings(ctx context.Context, dealerID string) scraper.FetchResult
	FetchAllImages(ctx context.Context, adID, canonicalURL string) []string
	ItemURL(adID string) string
}

// Publisher receives a copy of every snapshot written to disk.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
	Location() string
}

// Syncer replaces the on-disk snapshot with the dealer's current listings.
// Calls are not serialized: overlapping syncs race on the snapshot file.
type Syncer struct {
	dealerID  string
	source    Source
	store     *storage.SnapshotFile
	publisher Publisher
	now       func() time.Time

	mu      sync.Mutex
	lastRun *models.SyncRun
}

func New(dealerID string, source Source, store *storage.SnapshotFile) *Syncer {
	return &Syncer{
		dealerID: dealerID,
		source:   source,
		store:    store,
		now:      time.Now,
	}
}

// SetPublisher enables mirroring snapshots to an object store.
func (s *Syncer) SetPublisher(p Publisher) {
	s.publisher = p
}

// Sync fetches every listing, parses it, and overwrites the snapshot file.
// Upstream failures produce an empty snapshot; only local write errors are returned.
func (s *Syncer) Sync(ctx context.Context, trigger models.RunTrigger) (*models.Snapshot, error) {
	run := &models.SyncRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
		Status:    models.RunStatusRunning,
	}
	log.Printf("[sync] run %s (%s): starting sync for dealer %s", run.ID, trigger, s.dealerID)

	result := s.source.FetchDealerListings(ctx, s.dealerID)
	run.ListingsFound = len(result.Listings)
	run.Shape = string(result.Shape)
	if result.Failed() {
		run.FetchError = result.Err.Error()
		log.Printf("[sync] run %s: listings fetch failed, writing empty snapshot: %v", run.ID, result.Err)
	}

	cars := make([]models.Car, 0, len(result.Listings))
	for _, raw := range result.Listings {
		cars = append(cars, s.ParseListing(ctx, raw))
	}

	syncTime := s.now().UTC()
	snap := &models.Snapshot{
		DealerID: s.dealerID,
		LastSync: &syncTime,
		Count:    len(cars),
		Cars:     cars,
	}

	data, err := s.store.Save(snap)
	if err != nil {
		s.finish(run, err)
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	log.Printf("[sync] run %s: saved %d cars to %s", run.ID, len(cars), s.store.Path())

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, data); err != nil {
			log.Printf("[sync] run %s: publish to %s failed: %v", run.ID, s.publisher.Location(), err)
		} else {
			log.Printf("[sync] run %s: published snapshot to %s", run.ID, s.publisher.Location())
		}
	}

	s.finish(run, nil)
	return snap, nil
}

// ParseListing maps a provider listing into a Car, fetching its image gallery.
func (s *Syncer) ParseListing(ctx context.Context, raw scraper.RawListing) models.Car {
	adID := raw.String("ad_id", "id")

	canonicalURL := raw.String("canonical_url")
	if canonicalURL == "" {
		canonicalURL = s.source.ItemURL(adID)
	}

	images := s.source.FetchAllImages(ctx, adID, canonicalURL)
	if len(images) == 0 {
		images = FallbackImages(raw)
	}

	return models.Car{
		ID:           adID,
		BlocketURL:   canonicalURL,
		Title:        raw.String("heading", "subject"),
		Price:        ParsePrice(raw),
		Currency:     models.Currency,
		Year:         raw.String("year"),
		Mileage:      raw.String("mileage"),
		FuelType:     raw.String("fuel"),
		Transmission: raw.String("transmission"),
		BodyType:     BodyType(raw),
		Brand:        raw.String("make"),
		Model:        raw.String("model"),
		Location:     raw.String("location"),
		Images:       images,
		Description:  raw.String("model_specification"),
		Regno:        raw.String("regno"),
		FetchedAt:    s.now().UTC(),
	}
}

// LastRun returns a copy of the most recent finished run, or nil.
func (s *Syncer) LastRun() *models.SyncRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

func (s *Syncer) finish(run *models.SyncRun, err error) {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
}
