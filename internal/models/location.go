package models

import "time"

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationSample is a single position fix produced by the manual selector or
// the real-time tracker. Samples are ephemeral: they live in the tracker's
// history buffer and become durable only once merged into an AddressRecord.
type LocationSample struct {
	Coordinate       Coordinate `json:"coordinate"`
	AccuracyM        float64    `json:"accuracy_m"`
	CapturedAt       time.Time  `json:"captured_at"`
	ResolvedAddress  string     `json:"resolved_address,omitempty"`
	ResolvedDistrict string     `json:"resolved_district,omitempty"`
}

// AddressRecord is the persisted business address of a pressing. One record
// per business account, owned by the pressing profile and mutated only
// through the address manager.
type AddressRecord struct {
	Street      string     `json:"street"`
	City        string     `json:"city"`
	District    string     `json:"district"`
	PostalCode  string     `json:"postal_code"`
	Country     string     `json:"country"`
	Coordinates Coordinate `json:"coordinates"`
}

// Landmark is an addressable reference point stored in the local PostGIS
// database, used as a reverse-geocoding fallback when the external provider
// is unavailable.
type Landmark struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Street    string  `json:"street"`
	District  string  `json:"district"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
