package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"profile-server/api/elevation"
	"profile-server/chart"
	"profile-server/editor"
	"profile-server/events"
	"profile-server/geo"
	"profile-server/metrics"
	"profile-server/models"
	"profile-server/store"
	"profile-server/util"
)

// ErrSuperseded is returned when a newer refresh was started before this one finished.
var ErrSuperseded = errors.New("profile request superseded by a newer one")

// ErrEmptyProfile is returned when the elevation service answers OK without samples.
var ErrEmptyProfile = errors.New("elevation service returned no samples")

// STATUS_ZERO_RESULTS and STATUS_TIMEOUT are the notice statuses of failures
// that carry no status from the elevation service.
const STATUS_ZERO_RESULTS = "ZERO_RESULTS"
const STATUS_TIMEOUT = "TIMEOUT"

// ProfileRepository persists applied profiles.
type ProfileRepository interface {
	UpsertProfile(rec models.ProfileRecord) error
	SetLatestProfile(rec models.ProfileRecord) error
	GetLatestProfile() (*models.ProfileRecord, error)
}

// ProfileService runs the bounds -> sample -> store -> chart pipeline.
type ProfileService struct {
	editor       editor.RegionEditor
	elevationApi elevation.ElevationAPI
	store        *store.ProfileStore
	chart        *chart.ProfileChart
	repository   ProfileRepository
	publisher    events.Publisher
	samples      int
	timeout      time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	notice   *models.Notice
	latest   *models.ProfileRecord
	applyMu  sync.Mutex
	inflight sync.WaitGroup
}

// NewProfileService wires the pipeline. repository and publisher may be nil.
func NewProfileService(
	regionEditor editor.RegionEditor,
	elevationApi elevation.ElevationAPI,
	profileStore *store.ProfileStore,
	profileChart *chart.ProfileChart,
	repository ProfileRepository,
	publisher events.Publisher,
	samples int,
	timeout time.Duration) *ProfileService {

	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ProfileService{
		editor:       regionEditor,
		elevationApi: elevationApi,
		store:        profileStore,
		chart:        profileChart,
		repository:   repository,
		publisher:    publisher,
		samples:      samples,
		timeout:      timeout,
	}
}

// LoadSeed fills the store with the profile at path and draws the chart for the
// first time. On error the chart stays uninitialized.
func (ps *ProfileService) LoadSeed(path string) error {
	profile, err := util.ReadProfileFromJSON(path)
	if err != nil {
		metrics.PipelineFailures.WithLabelValues("seed").Inc()
		return fmt.Errorf("load seed profile: %w", err)
	}
	ps.applyMu.Lock()
	defer ps.applyMu.Unlock()
	ps.store.Set(profile)
	if err := ps.chart.Init(ps.store.Get()); err != nil {
		return fmt.Errorf("init chart: %w", err)
	}
	log.Printf("[ProfileService] Loaded seed profile with %d samples from %s", len(profile), path)
	return nil
}

// Restore shows the profile applied last before a restart. Without a stored
// profile it falls back to the seed file at seedPath.
func (ps *ProfileService) Restore(seedPath string) error {
	if ps.repository != nil {
		rec, err := ps.repository.GetLatestProfile()
		if err != nil {
			log.Printf("[ProfileService] Failed to read latest profile, using seed: %v", err)
		} else if rec != nil && len(rec.Samples) > 0 {
			ps.applyMu.Lock()
			defer ps.applyMu.Unlock()
			ps.store.Set(rec.Samples)
			if err := ps.chart.Init(ps.store.Get()); err != nil {
				return fmt.Errorf("init chart: %w", err)
			}
			ps.mu.Lock()
			ps.latest = rec
			ps.mu.Unlock()
			log.Printf("[ProfileService] Restored profile %s with %d samples", rec.ID, len(rec.Samples))
			return nil
		}
	}
	return ps.LoadSeed(seedPath)
}

// OnBoundsChanged is the editor listener. It shows the new corners, drops any
// request still in flight and samples the new bounds in the background.
func (ps *ProfileService) OnBoundsChanged() {
	bounds := ps.editor.GetBounds()
	ne, sw := geo.NorthEast(bounds), geo.SouthWest(bounds)
	ps.editor.ShowInfo(InfoContent(ne, sw), ne)

	// the new generation is issued before the old request is canceled, so the
	// old request always sees itself as superseded
	gen := ps.store.Begin()
	ctx, cancel := context.WithCancel(context.Background())
	ps.mu.Lock()
	if ps.cancel != nil {
		ps.cancel()
	}
	ps.cancel = cancel
	ps.mu.Unlock()

	ps.inflight.Add(1)
	go func() {
		defer ps.inflight.Done()
		defer cancel()
		if _, err := ps.refresh(ctx, gen, bounds); err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, context.Canceled) {
			log.Printf("[ProfileService] Refresh for %s failed: %v", bounds, err)
		}
	}()
}

// InfoContent is the popup text shown after the rectangle moves.
func InfoContent(ne, sw models.LatLng) string {
	return fmt.Sprintf("<b>Rectangle moved.</b><br>New north-east corner: %v, %v<br>New south-west corner: %v, %v",
		ne.Lat, ne.Lng, sw.Lat, sw.Lng)
}

// Refresh samples bounds synchronously and applies the result unless a newer
// refresh has started in the meantime.
func (ps *ProfileService) Refresh(ctx context.Context, bounds models.Bounds) (*models.ProfileRecord, error) {
	return ps.refresh(ctx, ps.store.Begin(), bounds)
}

func (ps *ProfileService) refresh(ctx context.Context, gen uint64, bounds models.Bounds) (*models.ProfileRecord, error) {
	a, b := geo.ExtractDiagonal(bounds)

	sampleCtx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()
	profile, err := ps.elevationApi.SampleAlongPath(sampleCtx, []models.LatLng{a, b}, ps.samples)
	if err != nil {
		if !ps.store.IsCurrent(gen) {
			metrics.ProfilesSuperseded.Inc()
			return nil, ErrSuperseded
		}
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			log.Printf("[ProfileService] Refresh generation %d canceled", gen)
			return nil, fmt.Errorf("sample elevation: %w", err)
		}
		ps.reportFailure(gen, err)
		return nil, fmt.Errorf("sample elevation: %w", err)
	}
	if len(profile) == 0 {
		if !ps.store.IsCurrent(gen) {
			metrics.ProfilesSuperseded.Inc()
			return nil, ErrSuperseded
		}
		ps.reportFailure(gen, ErrEmptyProfile)
		return nil, ErrEmptyProfile
	}

	rec := models.ProfileRecord{
		ID:             ProfileID(a, b, ps.samples),
		Bounds:         bounds,
		Path:           [2]models.LatLng{a, b},
		Samples:        profile,
		Generation:     gen,
		TransectMeters: geo.TransectLength(a, b),
		SampledAt:      time.Now().UTC(),
	}
	if err := ps.apply(rec); err != nil {
		return nil, err
	}

	ps.persist(rec)
	if err := ps.publisher.PublishProfileUpdated(ctx, rec); err != nil {
		metrics.PipelineFailures.WithLabelValues("publish").Inc()
		log.Printf("[ProfileService] Failed to publish profile %s: %v", rec.ID, err)
	}
	return &rec, nil
}

// apply stores rec and redraws the chart as one step. rec is never empty, so
// the chart always shows the stored profile afterwards.
func (ps *ProfileService) apply(rec models.ProfileRecord) error {
	ps.applyMu.Lock()
	defer ps.applyMu.Unlock()

	if !ps.store.Apply(rec.Generation, rec.Samples) {
		metrics.ProfilesSuperseded.Inc()
		log.Printf("[ProfileService] Discarding superseded profile generation %d", rec.Generation)
		return ErrSuperseded
	}
	metrics.ProfilesApplied.Inc()

	current := ps.store.Get()
	var err error
	if ps.chart.State() == chart.Uninitialized {
		err = ps.chart.Init(current)
	} else {
		err = ps.chart.Update(current)
	}
	if err != nil {
		metrics.PipelineFailures.WithLabelValues("chart").Inc()
		return fmt.Errorf("draw chart: %w", err)
	}

	ps.mu.Lock()
	ps.latest = &rec
	if ps.notice != nil && ps.notice.Generation < rec.Generation {
		ps.notice = nil
	}
	ps.mu.Unlock()
	log.Printf("[ProfileService] Applied profile %s (generation %d, %d samples)", rec.ID, rec.Generation, len(rec.Samples))
	return nil
}

func (ps *ProfileService) persist(rec models.ProfileRecord) {
	if ps.repository == nil {
		return
	}
	if err := ps.repository.UpsertProfile(rec); err != nil {
		metrics.PipelineFailures.WithLabelValues("persist").Inc()
		log.Printf("[ProfileService] Failed to persist profile %s: %v", rec.ID, err)
		return
	}
	if err := ps.repository.SetLatestProfile(rec); err != nil {
		metrics.PipelineFailures.WithLabelValues("persist").Inc()
		log.Printf("[ProfileService] Failed to cache latest profile %s: %v", rec.ID, err)
	}
}

func (ps *ProfileService) reportFailure(gen uint64, err error) {
	notice := models.Notice{
		Message:    err.Error(),
		Generation: gen,
		At:         time.Now().UTC(),
	}
	var statusErr *elevation.StatusError
	switch {
	case errors.As(err, &statusErr):
		notice.Status = statusErr.Status
	case errors.Is(err, context.DeadlineExceeded):
		notice.Status = STATUS_TIMEOUT
	case errors.Is(err, ErrEmptyProfile):
		notice.Status = STATUS_ZERO_RESULTS
	}
	metrics.PipelineFailures.WithLabelValues("sample").Inc()

	ps.mu.Lock()
	ps.notice = &notice
	ps.mu.Unlock()
}

// Wait blocks until every background refresh has finished.
func (ps *ProfileService) Wait() {
	ps.inflight.Wait()
}

// Stop cancels the background refresh, if any, and waits for it.
func (ps *ProfileService) Stop() {
	ps.mu.Lock()
	if ps.cancel != nil {
		ps.cancel()
	}
	ps.mu.Unlock()
	ps.Wait()
}

// LastNotice returns the most recent sampling failure, or nil once a newer
// profile has been applied.
func (ps *ProfileService) LastNotice() *models.Notice {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.notice == nil {
		return nil
	}
	n := *ps.notice
	return &n
}

// LatestRecord returns the last profile applied by a refresh, or nil if only
// the seed has been shown.
func (ps *ProfileService) LatestRecord() *models.ProfileRecord {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.latest == nil {
		return nil
	}
	rec := *ps.latest
	return &rec
}

// Profile returns the stored profile and its generation.
func (ps *ProfileService) Profile() (models.Profile, uint64) {
	return ps.store.Get(), ps.store.Version()
}

func (ps *ProfileService) Chart() *chart.ProfileChart {
	return ps.chart
}

// ProfileID identifies a transect by its rounded endpoints and sample count.
func ProfileID(a, b models.LatLng, samples int) string {
	sum := sha1.Sum([]byte(geo.PathKey([]models.LatLng{a, b}, samples)))
	return hex.EncodeToString(sum[:])
}
