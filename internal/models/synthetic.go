package models

import "time"

const (
	SyntheticSequenceID = "SIMULATED-0001"
	SyntheticRegionCode = "3020000000"
	SyntheticRegionName = "대전광역시 유성구"
	SyntheticMessage    = "[위급재난] 대전광역시 유성구 인근 규모 5.8 지진 발생. 낙하물로부터 머리를 보호하고 흔들림이 멈추면 넓은 공터로 대피하십시오."
)

// SyntheticRecord is the fixed earthquake record served when the live feed is
// unusable. Everything except the timestamp is constant.
func SyntheticRecord(at time.Time) RawDisasterRecord {
	return RawDisasterRecord{
		SequenceID:    SyntheticSequenceID,
		CreatedAt:     at,
		DisasterName:  "지진",
		RegionCode:    SyntheticRegionCode,
		RegionName:    SyntheticRegionName,
		Message:       SyntheticMessage,
		EmergencyStep: "위급재난",
	}
}
