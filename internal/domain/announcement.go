package domain

import "time"

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Announcement is a client's delivery request seeking transport: a pickup
// and a dropoff point with a requested pickup time and optional physical
// dimensions. Announcements are owned by the announcement store; the
// matching engine only reads them.
type Announcement struct {
	ID                  string
	ClientID            string
	Pickup              *Coordinates
	Dropoff             *Coordinates
	RequestedPickupTime time.Time
	WeightKg            float64 // 0 = unspecified
	VolumeDm3           float64 // 0 = unspecified
	Price               float64
	Urgency             Urgency
}

// Geolocated reports whether both pickup and dropoff coordinates are
// present and valid. Announcements without coordinates are skipped by the
// compatibility filter rather than rejected.
func (a *Announcement) Geolocated() bool {
	return a.Pickup != nil && a.Pickup.Valid() && a.Dropoff != nil && a.Dropoff.Valid()
}

// Validate rejects malformed announcements at the data-model boundary.
func (a *Announcement) Validate() error {
	if a.ClientID == "" {
		return &ValidationError{Field: "clientId", Reason: "must be non-empty"}
	}
	if a.Pickup != nil && !a.Pickup.Valid() {
		return &ValidationError{Field: "pickup", Reason: "coordinates out of range"}
	}
	if a.Dropoff != nil && !a.Dropoff.Valid() {
		return &ValidationError{Field: "dropoff", Reason: "coordinates out of range"}
	}
	if a.WeightKg < 0 {
		return &ValidationError{Field: "weightKg", Reason: "must not be negative"}
	}
	if a.VolumeDm3 < 0 {
		return &ValidationError{Field: "volumeDm3", Reason: "must not be negative"}
	}
	if a.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// VolumeFromDimensions converts package dimensions in centimetres to a
// volume in cubic decimetres, the unit capacity accounting works in.
func VolumeFromDimensions(lengthCm, widthCm, heightCm float64) float64 {
	if lengthCm <= 0 || widthCm <= 0 || heightCm <= 0 {
		return 0
	}
	return lengthCm * widthCm * heightCm / 1000
}
