package services

import (
	"math"
	"testing"

	"route-match-service/internal/domain"
)

func TestDistanceKmKnownValues(t *testing.T) {
	tests := []struct {
		name      string
		a, b      domain.Coordinates
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         domain.Coordinates{Lat: 48.8566, Lon: 2.3522},
			b:         domain.Coordinates{Lat: 48.8566, Lon: 2.3522},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Paris to Lyon (~392km)",
			a:         domain.Coordinates{Lat: 48.8566, Lon: 2.3522},
			b:         domain.Coordinates{Lat: 45.7640, Lon: 4.8357},
			wantKm:    392,
			tolerance: 5,
		},
		{
			name:      "Paris to Marseille (~660km)",
			a:         domain.Coordinates{Lat: 48.8566, Lon: 2.3522},
			b:         domain.Coordinates{Lat: 43.2965, Lon: 5.3698},
			wantKm:    660,
			tolerance: 10,
		},
		{
			name:      "across the antimeridian",
			a:         domain.Coordinates{Lat: 0, Lon: 179.5},
			b:         domain.Coordinates{Lat: 0, Lon: -179.5},
			wantKm:    111,
			tolerance: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	pairs := []struct {
		a, b domain.Coordinates
	}{
		{domain.Coordinates{Lat: 48.8566, Lon: 2.3522}, domain.Coordinates{Lat: 45.7640, Lon: 4.8357}},
		{domain.Coordinates{Lat: -33.8688, Lon: 151.2093}, domain.Coordinates{Lat: 51.5074, Lon: -0.1278}},
		{domain.Coordinates{Lat: 0, Lon: 0}, domain.Coordinates{Lat: 0.001, Lon: 0.001}},
	}

	for _, p := range pairs {
		d1 := DistanceKm(p.a, p.b)
		d2 := DistanceKm(p.b, p.a)
		if math.Abs(d1-d2) > 1e-9 {
			t.Errorf("distance not symmetric: %f vs %f for %+v %+v", d1, d2, p.a, p.b)
		}
		if d1 < 0 {
			t.Errorf("negative distance %f for %+v %+v", d1, p.a, p.b)
		}
	}
}
