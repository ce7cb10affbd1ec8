package classifier

import "github.com/mr1hm/go-safety-alerts/internal/models"

// Rule maps any of its keywords to a disaster type. Rules are evaluated top-down.
type Rule struct {
	Type     models.DisasterType
	Keywords []string
}

// TierMarkers are substrings that set the severity tier. Critical wins over urgent.
type TierMarkers struct {
	Critical []string
	Urgent   []string
}

// Vocabulary is everything the classifier matches against.
type Vocabulary struct {
	Rules            []Rule
	Tiers            TierMarkers
	MagnitudeMarkers []string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Rules: []Rule{
			{Type: models.DisasterTypeEarthquake, Keywords: []string{"지진", "흔들림", "여진", "earthquake", "quake"}},
			{Type: models.DisasterTypeFire, Keywords: []string{"화재", "산불", "wildfire", "fire"}},
			{Type: models.DisasterTypeFlood, Keywords: []string{"홍수", "호우", "폭우", "침수", "범람", "flood", "heavy rain"}},
			{Type: models.DisasterTypeTyphoon, Keywords: []string{"태풍", "typhoon"}},
			{Type: models.DisasterTypeTsunami, Keywords: []string{"지진해일", "쓰나미", "tsunami"}},
			{Type: models.DisasterTypeLandslide, Keywords: []string{"산사태", "토사", "landslide"}},
		},
		Tiers: TierMarkers{
			Critical: []string{"위급", "critical"},
			Urgent:   []string{"긴급", "urgent"},
		},
		MagnitudeMarkers: []string{"규모", "magnitude", "m"},
	}
}
