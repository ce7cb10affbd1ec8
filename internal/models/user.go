package models

type Accessibility string

const (
	AccessibilityVisual    Accessibility = "visual"
	AccessibilityHearing   Accessibility = "hearing"
	AccessibilityCognitive Accessibility = "cognitive"
)

type Mobility string

const (
	MobilityIndependent Mobility = "independent"
	MobilityAssisted    Mobility = "assisted"
	MobilityUnable      Mobility = "unable"
)

// UserProfile is owned by the profile store and read-only during classification.
type UserProfile struct {
	UserID        string          `json:"user_id"`
	Age           int             `json:"age"`
	Gender        string          `json:"gender,omitempty"`
	Address       string          `json:"address,omitempty"`
	Language      string          `json:"language"`
	Accessibility []Accessibility `json:"accessibility"`
	Mobility      Mobility        `json:"mobility"`
}

func (p UserProfile) Has(a Accessibility) bool {
	for _, v := range p.Accessibility {
		if v == a {
			return true
		}
	}
	return false
}

const (
	LocationHome    = "home"
	LocationOffice  = "office"
	LocationStreet  = "street"
	LocationTransit = "transit"
)

// UserSituation is reported by the client per request.
type UserSituation struct {
	LocationContext string       `json:"location_context"`
	CanMove         bool         `json:"can_move"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Note            string       `json:"note,omitempty"`
}

type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

type PriorityGroup string

const (
	PriorityImmediate PriorityGroup = "immediate"
	PriorityUrgent    PriorityGroup = "urgent"
	PriorityStandard  PriorityGroup = "standard"
)

type EvacuationCapability string

const (
	EvacuationIndependent  EvacuationCapability = "independent"
	EvacuationAssisted     EvacuationCapability = "assisted"
	EvacuationRescueNeeded EvacuationCapability = "rescue_needed"
)

type FontSize string

const (
	FontSizeLarge  FontSize = "large"
	FontSizeNormal FontSize = "normal"
)

// GuideStyle tells guide generation which tone and modality to use.
type GuideStyle struct {
	Language       string   `json:"language"`
	FontSize       FontSize `json:"font_size"`
	UseVoice       bool     `json:"use_voice"`
	UseVibration   bool     `json:"use_vibration"`
	SimplifiedText bool     `json:"simplified_text"`
}

type UserClassification struct {
	RiskScore            int                  `json:"risk_score"`
	RiskLevel            RiskLevel            `json:"risk_level"`
	PriorityGroup        PriorityGroup        `json:"priority_group"`
	SpecialNeeds         []string             `json:"special_needs"`
	GuideStyle           GuideStyle           `json:"guide_style"`
	EvacuationCapability EvacuationCapability `json:"evacuation_capability"`
	Classification       string               `json:"classification"`
}
