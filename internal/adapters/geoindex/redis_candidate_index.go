package geoindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"route-match-service/internal/domain"
)

// announcementGeoKey is the single GEO set holding every open announcement's
// pickup position.
const announcementGeoKey = "matching:announcements"

// RedisCandidateIndex is a Redis GEO implementation of the CandidateIndex
// port. It is a coarse pre-filter: entries may lag the relational store,
// which is acceptable because matching runs are advisory.
type RedisCandidateIndex struct {
	client *redis.Client
}

func NewRedisCandidateIndex(client *redis.Client) *RedisCandidateIndex {
	return &RedisCandidateIndex{client: client}
}

func (s *RedisCandidateIndex) Add(ctx context.Context, announcementID string, pickup domain.Coordinates) error {
	if s.client == nil {
		return errors.New("candidate index: redis client is nil")
	}
	if announcementID == "" {
		return errors.New("candidate index: announcement id must not be empty")
	}
	if !pickup.Valid() {
		return &domain.ValidationError{Field: "pickup", Reason: "coordinates out of range"}
	}

	err := s.client.GeoAdd(ctx, announcementGeoKey, &redis.GeoLocation{
		Name:      announcementID,
		Longitude: pickup.Lon,
		Latitude:  pickup.Lat,
	}).Err()
	if err != nil {
		return fmt.Errorf("candidate index: add announcement_id=%s: %w", announcementID, err)
	}

	return nil
}

func (s *RedisCandidateIndex) Remove(ctx context.Context, announcementID string) error {
	if s.client == nil {
		return errors.New("candidate index: redis client is nil")
	}

	if err := s.client.ZRem(ctx, announcementGeoKey, announcementID).Err(); err != nil {
		return fmt.Errorf("candidate index: remove announcement_id=%s: %w", announcementID, err)
	}

	return nil
}

// Nearby returns ids of announcements whose pickup lies within radiusKm of
// center, nearest first.
func (s *RedisCandidateIndex) Nearby(ctx context.Context, center domain.Coordinates, radiusKm float64) ([]string, error) {
	if s.client == nil {
		return nil, errors.New("candidate index: redis client is nil")
	}
	if radiusKm <= 0 {
		return nil, nil
	}

	results, err := s.client.GeoSearch(ctx, announcementGeoKey, &redis.GeoSearchQuery{
		Longitude:  center.Lon,
		Latitude:   center.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("candidate index: search radius=%.1fkm: %w", radiusKm, err)
	}

	return results, nil
}
