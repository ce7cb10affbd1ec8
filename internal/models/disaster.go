package models

import "time"

type DisasterType string

const (
	DisasterTypeEarthquake DisasterType = "earthquake"
	DisasterTypeFire       DisasterType = "fire"
	DisasterTypeFlood      DisasterType = "flood"
	DisasterTypeTyphoon    DisasterType = "typhoon"
	DisasterTypeLandslide  DisasterType = "landslide"
	DisasterTypeHeavyRain  DisasterType = "heavyRain"
	DisasterTypeTsunami    DisasterType = "tsunami"
	DisasterTypeOther      DisasterType = "other"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
	SeverityModerate Severity = "moderate"
)

// Classification tiers. The vibration pattern of a notification depends on these only.
const (
	ClassificationCritical = "critical-disaster"
	ClassificationUrgent   = "urgent-disaster"
	ClassificationGeneral  = "general-disaster"
)

// RawDisasterRecord is one unprocessed item from the feed provider.
type RawDisasterRecord struct {
	SequenceID    string    `json:"sequence_id"` // identity
	CreatedAt     time.Time `json:"created_at"`
	DisasterName  string    `json:"disaster_name"`
	RegionCode    string    `json:"region_code"`
	RegionName    string    `json:"region_name"`
	Message       string    `json:"message"`
	EmergencyStep string    `json:"emergency_step,omitempty"` // provider tier label, e.g. "위급재난"
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type Location struct {
	Name        string       `json:"name"`
	Code        string       `json:"code,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// DisasterAlert is the normalized result of classifying a raw record. Read-only once built.
type DisasterAlert struct {
	ID             string       `json:"id"`
	Type           DisasterType `json:"type"`
	Severity       Severity     `json:"severity"`
	Classification string       `json:"classification"`
	Magnitude      string       `json:"magnitude,omitempty"`
	Location       Location     `json:"location"`
	Description    string       `json:"description"`
	Confidence     float64      `json:"confidence"`
	IsRelevant     bool         `json:"is_relevant"`
	IssuedAt       time.Time    `json:"issued_at"`
}

const ambiguousBelow = 0.6

// IsAmbiguous reports a low-confidence classification. Callers decide the policy.
func (a DisasterAlert) IsAmbiguous() bool {
	return a.Confidence < ambiguousBelow
}

// Clone returns a copy that shares no pointers with a.
func (a *DisasterAlert) Clone() *DisasterAlert {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Location.Coordinates != nil {
		c := *a.Location.Coordinates
		cp.Location.Coordinates = &c
	}
	return &cp
}
