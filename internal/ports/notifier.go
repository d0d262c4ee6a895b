package ports

import "context"

// Port: notification intents emitted after a matching run. Actual delivery
// (email, push, SMS) belongs to the surrounding system.
type Notifier interface {
	// Tell a deliverer how many new opportunities matched their route.
	NotifyDeliverer(ctx context.Context, delivererID, routeID string, matchCount int) error

	// Tell a client a compatible route exists for their announcement.
	NotifyClient(ctx context.Context, clientID, routeID string, compatibilityScore float64) error
}
