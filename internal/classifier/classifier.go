// Package classifier turns raw feed records into normalized disaster alerts
// using ordered keyword rules.
package classifier

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

const (
	matchedConfidence = 0.95
	otherConfidence   = 0.5
	ambiguityPenalty  = 0.15
	relevanceFloor    = 0.3
)

// simulationEpoch pins SimulateAlert to a fixed issue time.
var simulationEpoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60))

// Classifier is safe for concurrent use; it holds no mutable state.
type Classifier struct {
	rules     []compiledRule
	tiers     TierMarkers
	magnitude *regexp.Regexp
}

func New(v Vocabulary) *Classifier {
	rules := make([]compiledRule, 0, len(v.Rules))
	for _, r := range v.Rules {
		rules = append(rules, compiledRule{Type: r.Type, Keywords: lowerAll(r.Keywords)})
	}
	for i := range rules {
		rules[i].masks = shadowingKeywords(rules, i)
	}
	return &Classifier{
		rules: rules,
		tiers: TierMarkers{
			Critical: lowerAll(v.Tiers.Critical),
			Urgent:   lowerAll(v.Tiers.Urgent),
		},
		magnitude: magnitudePattern(v.MagnitudeMarkers),
	}
}

func NewDefault() *Classifier {
	return New(DefaultVocabulary())
}

func (c *Classifier) Classify(rec models.RawDisasterRecord) models.DisasterAlert {
	name := strings.ToLower(strings.TrimSpace(rec.DisasterName))
	body := strings.ToLower(strings.TrimSpace(rec.Message))

	alert := models.DisasterAlert{
		ID:          rec.SequenceID,
		Location:    models.Location{Name: rec.RegionName, Code: rec.RegionCode},
		Description: strings.TrimSpace(rec.Message),
		IssuedAt:    rec.CreatedAt,
	}

	severity, classification, hasMarker := c.tier(strings.ToLower(rec.EmergencyStep) + " " + name + " " + body)
	alert.Severity = severity
	alert.Classification = classification

	matched, fromName := c.match(name, body)
	if matched == "" {
		alert.Type = models.DisasterTypeOther
		confidence := otherConfidence
		if name == "" {
			confidence -= ambiguityPenalty
		}
		if body == "" {
			confidence -= ambiguityPenalty
		}
		if !hasMarker {
			confidence -= ambiguityPenalty
		}
		alert.Confidence = clamp(confidence)
		alert.IsRelevant = alert.Confidence >= relevanceFloor
		return alert
	}

	alert.Type = matched
	confidence := matchedConfidence - ambiguityPenalty*float64(c.competitors(matched, name+" "+body))
	if !fromName && name != "" {
		confidence -= ambiguityPenalty
	}
	alert.Confidence = clamp(confidence)
	alert.IsRelevant = true

	if matched == models.DisasterTypeEarthquake {
		alert.Magnitude = c.extractMagnitude(rec.DisasterName + " " + rec.Message)
	}

	return alert
}

// SimulateAlert is the deterministic stand-in used when no live feed is configured.
func (c *Classifier) SimulateAlert() models.DisasterAlert {
	return c.Classify(models.SyntheticRecord(simulationEpoch))
}

// match runs the rule table over the disaster name first, then over the message body.
func (c *Classifier) match(name, body string) (models.DisasterType, bool) {
	if t := c.firstRule(name); t != "" {
		return t, true
	}
	return c.firstRule(body), false
}

func (c *Classifier) firstRule(text string) models.DisasterType {
	if text == "" {
		return ""
	}
	for _, r := range c.rules {
		if r.matches(text) {
			return r.Type
		}
	}
	return ""
}

// competitors counts distinct rule types other than matched whose keywords appear in text.
func (c *Classifier) competitors(matched models.DisasterType, text string) int {
	seen := make(map[models.DisasterType]bool)
	for _, r := range c.rules {
		if r.Type == matched || seen[r.Type] {
			continue
		}
		if r.matches(text) {
			seen[r.Type] = true
		}
	}
	return len(seen)
}

func (c *Classifier) tier(text string) (models.Severity, string, bool) {
	switch {
	case containsAny(text, c.tiers.Critical):
		return models.SeverityCritical, models.ClassificationCritical, true
	case containsAny(text, c.tiers.Urgent):
		return models.SeverityUrgent, models.ClassificationUrgent, true
	default:
		return models.SeverityModerate, models.ClassificationGeneral, false
	}
}

func (c *Classifier) extractMagnitude(text string) string {
	if c.magnitude == nil {
		return ""
	}
	m := c.magnitude.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// magnitudePattern matches a number directly after any marker. Single ASCII
// letters (like "M") must start a word so "5km" is not read as a magnitude.
func magnitudePattern(markers []string) *regexp.Regexp {
	if len(markers) == 0 {
		return nil
	}
	alts := make([]string, 0, len(markers))
	for _, m := range markers {
		q := regexp.QuoteMeta(m)
		if isASCIIWord(m) {
			q = `\b` + q
		}
		alts = append(alts, q)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)\s*:?\s*(\d+(?:\.\d+)?)`)
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// compiledRule carries the longer keywords of other rules that contain one of
// its own, so "지진해일" (tsunami) is not read as "지진" (earthquake).
type compiledRule struct {
	Type     models.DisasterType
	Keywords []string
	masks    []string
}

func (r compiledRule) matches(text string) bool {
	for _, m := range r.masks {
		text = strings.ReplaceAll(text, m, " ")
	}
	return containsAny(text, r.Keywords)
}

func shadowingKeywords(rules []compiledRule, i int) []string {
	var masks []string
	for j, other := range rules {
		if j == i || other.Type == rules[i].Type {
			continue
		}
		for _, long := range other.Keywords {
			for _, short := range rules[i].Keywords {
				if short != "" && len(long) > len(short) && strings.Contains(long, short) {
					masks = append(masks, long)
					break
				}
			}
		}
	}
	// Longest first so a compound is removed before any of its parts.
	sort.Slice(masks, func(a, b int) bool { return len(masks[a]) > len(masks[b]) })
	return masks
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func clamp(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(1, v))
}
