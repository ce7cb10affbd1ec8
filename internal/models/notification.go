package models

import "time"

type NotificationType string

const (
	NotificationEmergencyAlert NotificationType = "emergency_alert"
	NotificationStatusCheck    NotificationType = "status_check"
	NotificationAllClear       NotificationType = "all_clear"
)

// EmergencyNotification is the payload held in the active alert slot and fanned
// out to notification channels.
type EmergencyNotification struct {
	ID               string           `json:"id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	Data             *DisasterAlert   `json:"data,omitempty"`
	VibrationPattern []int            `json:"vibration_pattern"`
	IsActive         bool             `json:"is_active"`
	IsRead           bool             `json:"is_read"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Clone returns a deep copy so readers never share state with the slot.
func (n EmergencyNotification) Clone() EmergencyNotification {
	cp := n
	cp.Data = n.Data.Clone()
	if n.VibrationPattern != nil {
		cp.VibrationPattern = append([]int(nil), n.VibrationPattern...)
	}
	return cp
}

// MonitoringStatus is a read-only diagnostic snapshot of the monitoring loop.
type MonitoringStatus struct {
	IsRunning           bool      `json:"is_running"`
	RetryCount          int       `json:"retry_count"`
	LastTick            time.Time `json:"last_tick"`
	FallbackModeEngaged bool      `json:"fallback_mode_engaged"`
	TickCount           int64     `json:"tick_count"`
	LastError           string    `json:"last_error,omitempty"`
}
