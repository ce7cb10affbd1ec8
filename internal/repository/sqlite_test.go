package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_UpsertAndGetProfile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	profile := models.UserProfile{
		UserID:        "user_1",
		Age:           72,
		Gender:        "female",
		Address:       "대전광역시 유성구",
		Language:      "ko",
		Accessibility: []models.Accessibility{models.AccessibilityVisual},
		Mobility:      models.MobilityAssisted,
	}

	if err := db.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err := db.GetProfile(ctx, "user_1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.Age != 72 || got.Mobility != models.MobilityAssisted || got.Address != "대전광역시 유성구" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if len(got.Accessibility) != 1 || got.Accessibility[0] != models.AccessibilityVisual {
		t.Errorf("expected [visual], got %v", got.Accessibility)
	}

	// Update in place
	profile.Age = 73
	profile.Accessibility = nil
	if err := db.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("second UpsertProfile failed: %v", err)
	}
	got, err = db.GetProfile(ctx, "user_1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.Age != 73 {
		t.Errorf("expected age 73, got %d", got.Age)
	}
	if len(got.Accessibility) != 0 {
		t.Errorf("expected no accessibility flags, got %v", got.Accessibility)
	}
}

func TestSQLiteDB_GetProfile_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetProfile(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func notification(id string, typ models.NotificationType, at time.Time) models.EmergencyNotification {
	return models.EmergencyNotification{
		ID:    id,
		Type:  typ,
		Title: "[위급재난] 지진 발생",
		Body:  "대전광역시 유성구 · 규모 5.8",
		Data: &models.DisasterAlert{
			ID:             "alert_" + id,
			Type:           models.DisasterTypeEarthquake,
			Classification: models.ClassificationCritical,
			Magnitude:      "5.8",
			Location: models.Location{
				Name:        "대전광역시 유성구",
				Coordinates: &models.Coordinates{Latitude: 36.36, Longitude: 127.35},
			},
		},
		VibrationPattern: []int{1000, 200, 1000},
		IsActive:         typ == models.NotificationEmergencyAlert,
		Timestamp:        at,
	}
}

func TestSQLiteDB_AddAndListNotifications(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	entries := []models.EmergencyNotification{
		notification("n1", models.NotificationEmergencyAlert, base),
		notification("n2", models.NotificationAllClear, base.Add(time.Minute)),
		notification("n3", models.NotificationEmergencyAlert, base.Add(2*time.Minute)),
	}
	for _, n := range entries {
		if err := db.AddNotification(ctx, n); err != nil {
			t.Fatalf("AddNotification failed: %v", err)
		}
	}

	all, err := db.ListNotifications(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(all))
	}
	if all[0].ID != "n3" {
		t.Errorf("expected newest first, got %s", all[0].ID)
	}
	if all[0].Data == nil || all[0].Data.Location.Coordinates == nil || all[0].Data.Location.Coordinates.Latitude != 36.36 {
		t.Errorf("alert data not round-tripped: %+v", all[0].Data)
	}
	if len(all[0].VibrationPattern) != 3 || !all[0].IsActive {
		t.Errorf("unexpected notification: %+v", all[0])
	}
	if !all[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected timestamp %v", all[0].Timestamp)
	}

	alertType := models.NotificationEmergencyAlert
	alerts, err := db.ListNotifications(ctx, Filter{Type: &alertType})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("expected 2 emergency alerts, got %d", len(alerts))
	}

	since := base.Add(30 * time.Second)
	recent, err := db.ListNotifications(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 notifications since %v, got %d", since, len(recent))
	}

	limited, err := db.ListNotifications(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 notification with limit, got %d", len(limited))
	}
}

func TestSQLiteDB_DuplicateNotificationIgnored(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	n := notification("dup", models.NotificationEmergencyAlert, time.Now())

	if err := db.AddNotification(ctx, n); err != nil {
		t.Fatalf("first AddNotification failed: %v", err)
	}
	n.Title = "changed"
	if err := db.AddNotification(ctx, n); err != nil {
		t.Fatalf("second AddNotification failed: %v", err)
	}

	all, err := db.ListNotifications(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all) != 1 || all[0].Title == "changed" {
		t.Errorf("duplicate should be ignored, got %+v", all)
	}
}

func TestSQLiteDB_NotificationWithoutAlert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	n := models.EmergencyNotification{
		ID:               "bare",
		Type:             models.NotificationAllClear,
		Title:            "상황 해제",
		VibrationPattern: []int{200},
		Timestamp:        time.Now(),
	}
	if err := db.AddNotification(ctx, n); err != nil {
		t.Fatalf("AddNotification failed: %v", err)
	}

	all, err := db.ListNotifications(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all) != 1 || all[0].Data != nil {
		t.Errorf("expected one notification without data, got %+v", all)
	}
}
