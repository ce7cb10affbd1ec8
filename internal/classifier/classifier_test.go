package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

func TestClassify_EarthquakeWithMagnitude(t *testing.T) {
	c := NewDefault()
	rec := models.RawDisasterRecord{
		SequenceID:   "1001",
		DisasterName: "지진",
		Message:      "규모 5.8 지진이 발생했습니다",
		RegionName:   "대전광역시 유성구",
	}

	alert := c.Classify(rec)

	assert.Equal(t, "1001", alert.ID)
	assert.Equal(t, models.DisasterTypeEarthquake, alert.Type)
	assert.Equal(t, "5.8", alert.Magnitude)
	assert.Equal(t, "대전광역시 유성구", alert.Location.Name)
	assert.Equal(t, models.ClassificationGeneral, alert.Classification)
	assert.Equal(t, models.SeverityModerate, alert.Severity)
	assert.Equal(t, 0.95, alert.Confidence)
	assert.True(t, alert.IsRelevant)
}

func TestClassify_EarthquakeWithTierMarker(t *testing.T) {
	c := NewDefault()
	alert := c.Classify(models.RawDisasterRecord{
		SequenceID:   "1002",
		DisasterName: "지진",
		Message:      "[위급재난] 규모 5.8 지진이 발생했습니다",
		RegionName:   "대전광역시 유성구",
	})

	assert.Equal(t, models.ClassificationCritical, alert.Classification)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
}

func TestClassify_MagnitudeMarkers(t *testing.T) {
	c := NewDefault()
	tests := []struct {
		msg  string
		want string
	}{
		{"규모 5.8 지진이 발생했습니다", "5.8"},
		{"경북 경주시 남남서쪽 규모4.2 지진", "4.2"},
		{"Earthquake M6.1 near the coast", "6.1"},
		{"earthquake magnitude: 3.5 recorded", "3.5"},
		{"흔들림 감지, 진앙 5km 지점", ""},
		{"지진 발생, 규모 미정", ""},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			alert := c.Classify(models.RawDisasterRecord{SequenceID: "x", DisasterName: "지진", Message: tt.msg})
			require.Equal(t, models.DisasterTypeEarthquake, alert.Type)
			assert.Equal(t, tt.want, alert.Magnitude)
		})
	}
}

func TestClassify_EarthquakeKeywordAndMarkerAlwaysYieldMagnitude(t *testing.T) {
	c := NewDefault()
	keywords := []string{"지진", "흔들림", "여진"}
	magnitudes := []string{"2.0", "3.4", "5.8", "7.1"}

	for _, kw := range keywords {
		for _, mag := range magnitudes {
			alert := c.Classify(models.RawDisasterRecord{
				SequenceID: kw + mag,
				Message:    "충북 괴산군 규모 " + mag + " " + kw + " 발생",
			})
			assert.Equal(t, models.DisasterTypeEarthquake, alert.Type, kw)
			assert.NotEmpty(t, alert.Magnitude, kw+mag)
		}
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	c := NewDefault()
	tests := []struct {
		name     string
		disaster string
		msg      string
		want     models.DisasterType
	}{
		{"fire by name", "화재", "공장 화재 발생, 인근 주민 대피", models.DisasterTypeFire},
		{"wildfire in body", "", "산불 확산 중, 입산 자제", models.DisasterTypeFire},
		{"heavy rain maps to flood", "호우", "호우경보 발령, 하천 접근 금지", models.DisasterTypeFlood},
		{"flooding", "홍수", "저지대 침수 우려", models.DisasterTypeFlood},
		{"typhoon", "태풍", "태풍 북상 중 외출 자제", models.DisasterTypeTyphoon},
		{"landslide", "산사태", "산사태 위험 지역 주민 대피", models.DisasterTypeLandslide},
		{"tsunami by name", "지진해일", "[위급재난] 동해안 지진해일 경보 발령, 해안가 즉시 대피", models.DisasterTypeTsunami},
		{"tsunami in body", "", "지진해일 주의보 발효, 해안 접근 금지", models.DisasterTypeTsunami},
		{"landslide in body", "", "급경사지 산사태 우려, 접근 금지", models.DisasterTypeLandslide},
		{"earthquake alongside tsunami", "", "규모 6.0 지진 발생, 지진해일 가능성", models.DisasterTypeEarthquake},
		{"name wins over body", "태풍", "강풍과 호우 동반", models.DisasterTypeTyphoon},
		{"earthquake before fire", "", "지진으로 인한 화재 발생", models.DisasterTypeEarthquake},
		{"english case-insensitive", "", "FLOOD warning for the river basin", models.DisasterTypeFlood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := c.Classify(models.RawDisasterRecord{SequenceID: "r", DisasterName: tt.disaster, Message: tt.msg})
			assert.Equal(t, tt.want, alert.Type)
		})
	}
}

func TestClassify_ConfidenceDropsOnCompetingKeywords(t *testing.T) {
	c := NewDefault()

	single := c.Classify(models.RawDisasterRecord{SequenceID: "a", DisasterName: "화재", Message: "아파트 화재"})
	double := c.Classify(models.RawDisasterRecord{SequenceID: "b", DisasterName: "화재", Message: "호우 중 화재"})
	triple := c.Classify(models.RawDisasterRecord{SequenceID: "c", DisasterName: "화재", Message: "태풍과 호우 중 화재"})

	assert.Equal(t, 0.95, single.Confidence)
	assert.Equal(t, 0.8, double.Confidence)
	assert.Equal(t, 0.65, triple.Confidence)
}

func TestClassify_CompoundKeywordBeatsItsPrefix(t *testing.T) {
	c := NewDefault()
	alert := c.Classify(models.RawDisasterRecord{
		SequenceID:   "t1",
		DisasterName: "지진해일",
		Message:      "[위급재난] 동해안 지진해일 경보 발령, 해안가 즉시 대피",
	})

	assert.Equal(t, models.DisasterTypeTsunami, alert.Type)
	assert.Equal(t, 0.95, alert.Confidence)
	assert.Empty(t, alert.Magnitude)
	assert.Equal(t, models.ClassificationCritical, alert.Classification)

	landslide := c.Classify(models.RawDisasterRecord{SequenceID: "l1", DisasterName: "산사태", Message: "산사태 경보, 인근 주민 대피"})
	assert.Equal(t, models.DisasterTypeLandslide, landslide.Type)
	assert.Equal(t, 0.95, landslide.Confidence)
}

func TestClassify_BodyOnlyMatchIsPenalized(t *testing.T) {
	c := NewDefault()
	alert := c.Classify(models.RawDisasterRecord{SequenceID: "a", DisasterName: "기타", Message: "산불 주의"})

	assert.Equal(t, models.DisasterTypeFire, alert.Type)
	assert.Equal(t, 0.8, alert.Confidence)
}

func TestClassify_Other(t *testing.T) {
	c := NewDefault()

	generic := c.Classify(models.RawDisasterRecord{SequenceID: "o1", DisasterName: "기타", Message: "감염병 예방 수칙을 지켜주세요"})
	assert.Equal(t, models.DisasterTypeOther, generic.Type)
	assert.LessOrEqual(t, generic.Confidence, 0.5)
	assert.True(t, generic.IsRelevant)
	assert.True(t, generic.IsAmbiguous())

	empty := c.Classify(models.RawDisasterRecord{SequenceID: "o2"})
	assert.Equal(t, models.DisasterTypeOther, empty.Type)
	assert.Less(t, empty.Confidence, 0.3)
	assert.False(t, empty.IsRelevant)
}

func TestClassify_UrgentMarker(t *testing.T) {
	c := NewDefault()
	alert := c.Classify(models.RawDisasterRecord{SequenceID: "u", DisasterName: "호우", EmergencyStep: "긴급재난", Message: "하천 범람 우려"})

	assert.Equal(t, models.ClassificationUrgent, alert.Classification)
	assert.Equal(t, models.SeverityUrgent, alert.Severity)
}

func TestClassify_CustomVocabulary(t *testing.T) {
	c := New(Vocabulary{
		Rules: []Rule{{Type: models.DisasterTypeHeavyRain, Keywords: []string{"Heavy Rain"}}},
		Tiers: TierMarkers{Critical: []string{"EXTREME"}},
	})

	alert := c.Classify(models.RawDisasterRecord{SequenceID: "c", Message: "extreme heavy rain expected"})
	assert.Equal(t, models.DisasterTypeHeavyRain, alert.Type)
	assert.Equal(t, models.ClassificationCritical, alert.Classification)
	assert.Empty(t, alert.Magnitude)
}

func TestSimulateAlert_Deterministic(t *testing.T) {
	c := NewDefault()
	a := c.SimulateAlert()
	b := c.SimulateAlert()

	assert.Equal(t, a, b)
	assert.Equal(t, models.DisasterTypeEarthquake, a.Type)
	assert.Equal(t, "5.8", a.Magnitude)
	assert.Equal(t, models.SyntheticRegionName, a.Location.Name)
	assert.Equal(t, models.ClassificationCritical, a.Classification)
	assert.Equal(t, models.SyntheticSequenceID, a.ID)
	assert.True(t, a.IssuedAt.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
