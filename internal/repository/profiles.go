package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

func (s *SQLiteDB) UpsertProfile(ctx context.Context, p models.UserProfile) error {
	accessibility := p.Accessibility
	if accessibility == nil {
		accessibility = []models.Accessibility{}
	}
	acc, err := json.Marshal(accessibility)
	if err != nil {
		return fmt.Errorf("error encoding accessibility: %w", err)
	}

	query := `
		INSERT INTO user_profiles (user_id, age, gender, address, language, accessibility, mobility, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			age = excluded.age,
			gender = excluded.gender,
			address = excluded.address,
			language = excluded.language,
			accessibility = excluded.accessibility,
			mobility = excluded.mobility,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		p.UserID, p.Age, p.Gender, p.Address, p.Language, string(acc), string(p.Mobility), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error upserting profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *SQLiteDB) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	query := `
		SELECT user_id, age, gender, address, language, accessibility, mobility
		FROM user_profiles WHERE user_id = ?
	`

	var (
		p        models.UserProfile
		gender   sql.NullString
		address  sql.NullString
		acc      string
		mobility string
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Age, &gender, &address, &p.Language, &acc, &mobility)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("error reading profile %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(acc), &p.Accessibility); err != nil {
		return models.UserProfile{}, fmt.Errorf("error decoding accessibility for %s: %w", userID, err)
	}
	p.Gender = gender.String
	p.Address = address.String
	p.Mobility = models.Mobility(mobility)
	return p, nil
}
