// Package risk scores a user's situation against their static profile and
// derives the guide style and evacuation capability used downstream.
package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

var ErrInvalidProfile = errors.New("invalid profile")

const (
	highThreshold   = 6
	mediumThreshold = 3
	maxAge          = 150
)

// factor contributes points when its predicate holds. Factors are independent
// and summed, so table order does not affect the score.
type factor struct {
	name   string
	points int
	holds  func(models.UserProfile, models.UserSituation) bool
}

var factors = []factor{
	{"age_70_plus", 3, func(p models.UserProfile, _ models.UserSituation) bool { return p.Age >= 70 }},
	{"age_60_69", 2, func(p models.UserProfile, _ models.UserSituation) bool { return p.Age >= 60 && p.Age < 70 }},
	{"age_10_under", 3, func(p models.UserProfile, _ models.UserSituation) bool { return p.Age <= 10 }},
	{"visual", 2, func(p models.UserProfile, _ models.UserSituation) bool { return p.Has(models.AccessibilityVisual) }},
	{"hearing", 1, func(p models.UserProfile, _ models.UserSituation) bool { return p.Has(models.AccessibilityHearing) }},
	{"cognitive", 2, func(p models.UserProfile, _ models.UserSituation) bool { return p.Has(models.AccessibilityCognitive) }},
	{"mobility_unable", 3, func(p models.UserProfile, _ models.UserSituation) bool { return p.Mobility == models.MobilityUnable }},
	{"mobility_assisted", 2, func(p models.UserProfile, _ models.UserSituation) bool { return p.Mobility == models.MobilityAssisted }},
	{"cannot_move", 3, func(_ models.UserProfile, s models.UserSituation) bool { return !s.CanMove }},
	{"in_transit", 2, func(_ models.UserProfile, s models.UserSituation) bool { return s.LocationContext == models.LocationTransit }},
	{"on_street", 1, func(_ models.UserProfile, s models.UserSituation) bool { return s.LocationContext == models.LocationStreet }},
}

var accessibilityNeeds = []struct {
	flag models.Accessibility
	tags []string
}{
	{models.AccessibilityVisual, []string{"screen_reader", "voice_guidance"}},
	{models.AccessibilityHearing, []string{"visual_alert", "vibration_alert"}},
	{models.AccessibilityCognitive, []string{"simplified_instructions", "caregiver_contact"}},
}

var mobilityNeeds = map[models.Mobility][]string{
	models.MobilityUnable:   {"wheelchair_access", "rescue_assistance"},
	models.MobilityAssisted: {"mobility_aid", "evacuation_assistance"},
}

var (
	immobileNeeds = []string{"rescue_assistance", "location_sharing"}
	elderlyNeeds  = []string{"elderly_care", "evacuation_assistance"}
	childNeeds    = []string{"guardian_contact", "simplified_instructions"}
)

// Classify is a pure function of its inputs.
func Classify(p models.UserProfile, s models.UserSituation) (models.UserClassification, error) {
	if err := Validate(p); err != nil {
		return models.UserClassification{}, err
	}

	score := Score(p, s)
	level := levelFor(score)

	c := models.UserClassification{
		RiskScore:            score,
		RiskLevel:            level,
		PriorityGroup:        priorityGroup(level, p, s),
		SpecialNeeds:         specialNeeds(p, s),
		GuideStyle:           guideStyle(p),
		EvacuationCapability: evacuationCapability(p, s),
	}
	c.Classification = summary(c)

	return c, nil
}

// Validate reports ErrInvalidProfile when a required field is missing or out of range.
func Validate(p models.UserProfile) error {
	if p.Age < 0 || p.Age > maxAge {
		return fmt.Errorf("%w: age %d out of range", ErrInvalidProfile, p.Age)
	}
	if strings.TrimSpace(p.Language) == "" {
		return fmt.Errorf("%w: language is required", ErrInvalidProfile)
	}
	switch p.Mobility {
	case models.MobilityIndependent, models.MobilityAssisted, models.MobilityUnable:
	default:
		return fmt.Errorf("%w: unknown mobility %q", ErrInvalidProfile, p.Mobility)
	}
	seen := make(map[models.Accessibility]bool, len(p.Accessibility))
	for _, a := range p.Accessibility {
		switch a {
		case models.AccessibilityVisual, models.AccessibilityHearing, models.AccessibilityCognitive:
		default:
			return fmt.Errorf("%w: unknown accessibility %q", ErrInvalidProfile, a)
		}
		if seen[a] {
			return fmt.Errorf("%w: duplicate accessibility %q", ErrInvalidProfile, a)
		}
		seen[a] = true
	}
	return nil
}

// accessibilityCount counts distinct flags; accessibility is a set.
func accessibilityCount(p models.UserProfile) int {
	n := 0
	for _, an := range accessibilityNeeds {
		if p.Has(an.flag) {
			n++
		}
	}
	return n
}

func Score(p models.UserProfile, s models.UserSituation) int {
	total := 0
	for _, f := range factors {
		if f.holds(p, s) {
			total += f.points
		}
	}
	return total
}

func levelFor(score int) models.RiskLevel {
	switch {
	case score >= highThreshold:
		return models.RiskHigh
	case score >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func priorityGroup(level models.RiskLevel, p models.UserProfile, s models.UserSituation) models.PriorityGroup {
	hasAccessibility := accessibilityCount(p) > 0
	switch {
	case level == models.RiskHigh || !s.CanMove || p.Mobility == models.MobilityUnable || (p.Age >= 70 && hasAccessibility):
		return models.PriorityImmediate
	case level == models.RiskMedium || p.Mobility == models.MobilityAssisted || p.Age >= 65 || hasAccessibility:
		return models.PriorityUrgent
	default:
		return models.PriorityStandard
	}
}

func specialNeeds(p models.UserProfile, s models.UserSituation) []string {
	seen := make(map[string]bool)
	needs := make([]string, 0, 8)
	add := func(tags []string) {
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				needs = append(needs, t)
			}
		}
	}

	for _, an := range accessibilityNeeds {
		if p.Has(an.flag) {
			add(an.tags)
		}
	}
	add(mobilityNeeds[p.Mobility])
	if !s.CanMove {
		add(immobileNeeds)
	}
	if p.Age >= 70 {
		add(elderlyNeeds)
	}
	if p.Age <= 10 {
		add(childNeeds)
	}

	return needs
}

func guideStyle(p models.UserProfile) models.GuideStyle {
	font := models.FontSizeNormal
	if p.Age >= 60 || p.Has(models.AccessibilityVisual) {
		font = models.FontSizeLarge
	}
	return models.GuideStyle{
		Language:       p.Language,
		FontSize:       font,
		UseVoice:       p.Has(models.AccessibilityVisual) || p.Age >= 65,
		UseVibration:   p.Has(models.AccessibilityHearing),
		SimplifiedText: p.Has(models.AccessibilityCognitive) || p.Age >= 70,
	}
}

func evacuationCapability(p models.UserProfile, s models.UserSituation) models.EvacuationCapability {
	switch {
	case !s.CanMove || p.Mobility == models.MobilityUnable || (p.Age >= 80 && accessibilityCount(p) > 1):
		return models.EvacuationRescueNeeded
	case p.Mobility == models.MobilityAssisted || p.Age >= 70 || accessibilityCount(p) > 0:
		return models.EvacuationAssisted
	default:
		return models.EvacuationIndependent
	}
}

func summary(c models.UserClassification) string {
	needs := "none"
	if len(c.SpecialNeeds) > 0 {
		needs = strings.Join(c.SpecialNeeds, ", ")
	}
	return fmt.Sprintf("%s-risk/%s (%s), score %d; needs: %s",
		c.RiskLevel, c.PriorityGroup, c.EvacuationCapability, c.RiskScore, needs)
}
