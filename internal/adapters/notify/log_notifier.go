package notify

import (
	"context"
	"log"
)

// LogNotifier is a Notifier implementation that records notification
// intents on the process log. Real channels (email, push, SMS) belong to
// the surrounding system; this adapter keeps the pipeline observable
// without them.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyDeliverer(_ context.Context, delivererID, routeID string, matchCount int) error {
	log.Printf("notify kind=deliverer_matches deliverer=%s route=%s matches=%d", delivererID, routeID, matchCount)
	return nil
}

func (n *LogNotifier) NotifyClient(_ context.Context, clientID, routeID string, compatibilityScore float64) error {
	log.Printf("notify kind=client_route_option client=%s route=%s score=%.1f", clientID, routeID, compatibilityScore)
	return nil
}
