package api

import (
	"github.com/mr1hm/go-safety-alerts/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"` // null when the alert has no coordinates
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(notifications []models.EmergencyNotification) FeatureCollection {
	features := make([]Feature, 0, len(notifications))

	for _, n := range notifications {
		props := map[string]any{
			"id":                n.ID,
			"type":              n.Type,
			"title":             n.Title,
			"body":              n.Body,
			"vibration_pattern": n.VibrationPattern,
			"is_active":         n.IsActive,
			"timestamp":         n.Timestamp,
		}

		f := Feature{Type: "Feature", Properties: props}
		if a := n.Data; a != nil {
			props["alert_id"] = a.ID
			props["disaster_type"] = a.Type
			props["classification"] = a.Classification
			props["magnitude"] = a.Magnitude
			props["location"] = a.Location.Name
			props["confidence"] = a.Confidence
			if c := a.Location.Coordinates; c != nil {
				f.Geometry = &Geometry{
					Type:        "Point",
					Coordinates: []float64{c.Longitude, c.Latitude},
				}
			}
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
