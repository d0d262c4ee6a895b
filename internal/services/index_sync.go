package services

import (
	"context"
	"fmt"
	"log"

	"route-match-service/internal/platform/obs"
	"route-match-service/internal/ports"
)

// SyncCandidateIndex mirrors open announcements into the candidate index so
// Nearby pre-filtering covers the whole pool. Announcements without
// coordinates never enter the index; they can only be matched through the
// store scan. Returns how many entries were written.
//
// Intended to run at startup and whenever announcements are (re)seeded; an
// Add failure is logged and skipped so one bad entry cannot abort the sync.
func SyncCandidateIndex(
	ctx context.Context,
	announcements ports.AnnouncementRepository,
	index ports.CandidateIndex,
	limit int,
) (_ int, err error) {
	defer obs.Time(ctx, "match.index_sync")(&err)

	if index == nil {
		return 0, nil
	}

	open, err := announcements.ListOpen(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("sync candidate index: list open announcements: %w", err)
	}

	added := 0
	for _, a := range open {
		if err := ctx.Err(); err != nil {
			return added, fmt.Errorf("sync candidate index: aborted: %w", err)
		}
		if !a.Geolocated() {
			continue
		}
		if err := index.Add(ctx, a.ID, *a.Pickup); err != nil {
			log.Printf("index sync skip announcement=%s err=%v", a.ID, err)
			continue
		}
		added++
	}

	log.Printf("index sync open=%d indexed=%d", len(open), added)
	return added, nil
}
