package risk

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
)

// ProfileStore is the boundary to the external user profile store.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
}

// Service classifies stored users. It holds no per-request state.
type Service struct {
	profiles ProfileStore
	metrics  *observability.Metrics
}

func NewService(profiles ProfileStore, metrics *observability.Metrics) *Service {
	return &Service{profiles: profiles, metrics: metrics}
}

// ClassifyUser loads the profile and classifies it against the reported situation.
// Store errors (including not-found) are returned unchanged.
func (s *Service) ClassifyUser(ctx context.Context, userID string, situation models.UserSituation) (models.UserClassification, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return models.UserClassification{}, err
	}
	return s.Classify(profile, situation)
}

func (s *Service) Classify(profile models.UserProfile, situation models.UserSituation) (models.UserClassification, error) {
	c, err := Classify(profile, situation)
	if err != nil {
		slog.Warn("user classification rejected", "user_id", profile.UserID, "error", err)
		return c, err
	}

	s.metrics.UserClassifications.WithLabelValues(string(c.RiskLevel)).Inc()
	slog.Info("user classified",
		"user_id", profile.UserID,
		"risk_level", c.RiskLevel,
		"priority", c.PriorityGroup,
		"summary", c.Classification,
	)
	return c, nil
}
