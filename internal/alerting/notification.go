package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

// BuildFunc turns an alert into the notification held in the active slot.
type BuildFunc func(alert models.DisasterAlert, now time.Time) models.EmergencyNotification

var (
	patternCritical = []int{1000, 200, 1000, 200, 1000, 200, 1000}
	patternUrgent   = []int{500, 300, 500, 300, 500}
	patternGeneral  = []int{200, 500, 200}
	patternAllClear = []int{200}
)

const (
	allClearTitle    = "상황 해제"
	allClearBody     = "재난 상황이 해제되었습니다. 주변 안전을 확인한 뒤 일상으로 복귀하세요."
	statusCheckTitle = "안전 확인"
)

var typeLabels = map[models.DisasterType]string{
	models.DisasterTypeEarthquake: "지진",
	models.DisasterTypeFire:       "화재",
	models.DisasterTypeFlood:      "홍수",
	models.DisasterTypeTyphoon:    "태풍",
	models.DisasterTypeLandslide:  "산사태",
	models.DisasterTypeHeavyRain:  "호우",
	models.DisasterTypeTsunami:    "지진해일",
	models.DisasterTypeOther:      "재난",
}

var tierLabels = map[string]string{
	models.ClassificationCritical: "위급재난",
	models.ClassificationUrgent:   "긴급재난",
	models.ClassificationGeneral:  "재난안내",
}

// VibrationPattern depends only on the classification tier, never on the disaster type.
func VibrationPattern(classification string) []int {
	var p []int
	switch classification {
	case models.ClassificationCritical:
		p = patternCritical
	case models.ClassificationUrgent:
		p = patternUrgent
	default:
		p = patternGeneral
	}
	return append([]int(nil), p...)
}

// BuildNotification is the default BuildFunc.
func BuildNotification(alert models.DisasterAlert, now time.Time) models.EmergencyNotification {
	return models.EmergencyNotification{
		ID:               alert.ID,
		Type:             models.NotificationEmergencyAlert,
		Title:            alertTitle(alert),
		Body:             alertBody(alert),
		Data:             alert.Clone(),
		VibrationPattern: VibrationPattern(alert.Classification),
		IsActive:         true,
		Timestamp:        now,
	}
}

func alertTitle(a models.DisasterAlert) string {
	tier, ok := tierLabels[a.Classification]
	if !ok {
		tier = tierLabels[models.ClassificationGeneral]
	}
	label, ok := typeLabels[a.Type]
	if !ok {
		label = typeLabels[models.DisasterTypeOther]
	}
	return fmt.Sprintf("[%s] %s 발생", tier, label)
}

func alertBody(a models.DisasterAlert) string {
	var head []string
	if a.Location.Name != "" {
		head = append(head, a.Location.Name)
	}
	if a.Magnitude != "" {
		head = append(head, "규모 "+a.Magnitude)
	}

	var b strings.Builder
	if len(head) > 0 {
		b.WriteString(strings.Join(head, " · "))
	}
	if a.Description != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.Description)
	}
	return b.String()
}

func allClearNotification(id string, previous models.EmergencyNotification, now time.Time) models.EmergencyNotification {
	return models.EmergencyNotification{
		ID:               id,
		Type:             models.NotificationAllClear,
		Title:            allClearTitle,
		Body:             allClearBody,
		Data:             previous.Data.Clone(),
		VibrationPattern: append([]int(nil), patternAllClear...),
		Timestamp:        now,
	}
}

func statusCheckNotification(id string, held models.EmergencyNotification, now time.Time) models.EmergencyNotification {
	return models.EmergencyNotification{
		ID:               id,
		Type:             models.NotificationStatusCheck,
		Title:            statusCheckTitle,
		Body:             fmt.Sprintf("%s 관련 현재 상태를 알려주세요. 안전하신가요?", held.Title),
		Data:             held.Data.Clone(),
		VibrationPattern: append([]int(nil), patternGeneral...),
		IsActive:         held.IsActive,
		Timestamp:        now,
	}
}
