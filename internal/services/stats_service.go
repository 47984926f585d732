package services

import (
	"context"
	"time"

	"linkmint/internal/models"
)

type AdoptionReader interface {
	GetForUser(ctx context.Context, userID, adoptionID string) (models.Adoption, error)
}

type ClickStatsReader interface {
	CountByAdoption(ctx context.Context, adoptionID string) (total, valid int, err error)
	ValidClicksByDay(ctx context.Context, adoptionID string, since time.Time) ([]models.DayCount, error)
	ValidClicksByCountry(ctx context.Context, adoptionID string, since time.Time, limit int) ([]models.CountryCount, error)
	ValidClicksByDevice(ctx context.Context, adoptionID string, since time.Time) ([]models.DeviceCount, error)
}

type StatsService struct {
	Adoptions AdoptionReader
	Clicks    ClickStatsReader
}

// ClickStats rolls up a publisher's click history for one of their own
// adoptions over a trailing window of days (default 30).
func (s *StatsService) ClickStats(ctx context.Context, userID, adoptionID string, days int) (models.ClickStats, error) {
	adoption, err := s.Adoptions.GetForUser(ctx, userID, adoptionID)
	if err != nil {
		return models.ClickStats{}, err
	}
	if days < 1 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	total, valid, err := s.Clicks.CountByAdoption(ctx, adoption.ID)
	if err != nil {
		return models.ClickStats{}, err
	}
	byDay, err := s.Clicks.ValidClicksByDay(ctx, adoption.ID, since)
	if err != nil {
		return models.ClickStats{}, err
	}
	byCountry, err := s.Clicks.ValidClicksByCountry(ctx, adoption.ID, since, 10)
	if err != nil {
		return models.ClickStats{}, err
	}
	byDevice, err := s.Clicks.ValidClicksByDevice(ctx, adoption.ID, since)
	if err != nil {
		return models.ClickStats{}, err
	}

	stats := models.ClickStats{
		TotalClicks:     total,
		ValidClicks:     valid,
		InvalidClicks:   total - valid,
		ClicksByDay:     byDay,
		ClicksByCountry: byCountry,
		ClicksByDevice:  byDevice,
	}
	if stats.ClicksByDay == nil {
		stats.ClicksByDay = []models.DayCount{}
	}
	if stats.ClicksByCountry == nil {
		stats.ClicksByCountry = []models.CountryCount{}
	}
	if stats.ClicksByDevice == nil {
		stats.ClicksByDevice = []models.DeviceCount{}
	}
	return stats, nil
}
