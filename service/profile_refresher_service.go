package services

import (
	"context"
	"errors"
	"log"
	"time"

	"profile-server/editor"
)

// ProfileRefresherService periodically re-samples the rectangle's current bounds.
type ProfileRefresherService struct {
	profileService *ProfileService
	editor         editor.RegionEditor
}

// NewProfileRefresherService constructs a new Refresher with dependencies.
func NewProfileRefresherService(
	profileService *ProfileService,
	regionEditor editor.RegionEditor,
) *ProfileRefresherService {
	return &ProfileRefresherService{
		profileService: profileService,
		editor:         regionEditor,
	}
}

// StartPeriodicJob launches the background loop at the given interval until ctx
// is done. A zero interval disables the job.
func (pr *ProfileRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Println("[ProfileRefresherService] Periodic refresh disabled.")
		return
	}
	go pr.startPeriodicJob(ctx, interval)
}

func (pr *ProfileRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[ProfileRefresherService] Stopping periodic refresher job.")
			return
		case <-ticker.C:
			log.Println("[ProfileRefresherService] Running periodic profile refresher job.")
			if err := pr.RefreshProfile(ctx); err != nil {
				log.Printf("[ProfileRefresherService] RefreshProfile returned error: %v", err)
			} else {
				log.Println("[ProfileRefresherService] RefreshProfile completed successfully.")
			}
		}
	}
}

// RefreshProfile re-samples the current bounds once. Losing to a newer
// bounds change is not an error.
func (pr *ProfileRefresherService) RefreshProfile(ctx context.Context) error {
	_, err := pr.profileService.Refresh(ctx, pr.editor.GetBounds())
	if errors.Is(err, ErrSuperseded) {
		log.Println("[ProfileRefresherService] Refresh superseded by a bounds change.")
		return nil
	}
	return err
}
