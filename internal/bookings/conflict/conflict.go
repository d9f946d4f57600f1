// Package conflict decides whether a requested stay collides with bookings
// already stored for a room.
package conflict

import (
	"context"
	"fmt"

	"innkeep/pkg/model"
)

// OverlapFinder is satisfied by store.Tx.
type OverlapFinder interface {
	FindBookingsOverlapping(ctx context.Context, roomID string, stay model.Stay) ([]*model.Booking, error)
}

type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// HasConflict reports whether any stored booking of the room overlaps stay.
// The finder must be the transaction the caller's subsequent writes use.
func (d *Detector) HasConflict(ctx context.Context, q OverlapFinder, roomID string, stay model.Stay) (bool, error) {
	candidates, err := q.FindBookingsOverlapping(ctx, roomID, stay)
	if err != nil {
		return false, fmt.Errorf("failed to look up bookings for room %s: %w", roomID, err)
	}

	// The query is only trusted to narrow the candidates.
	for _, b := range candidates {
		if b.RoomID == roomID && b.Stay().Overlaps(stay) {
			return true, nil
		}
	}
	return false, nil
}
