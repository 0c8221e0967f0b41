package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"bookspace/internal/stats/repository"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/model"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type StatsService interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	BookingsByMonth(ctx context.Context) ([]model.MonthlyBookings, error)
}

type statsService struct {
	repo repository.StatsRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewStatsService(repo repository.StatsRepository, cfg *config.Config) StatsService {
	return &statsService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Dashboard computes the admin summary. Calendar bounds are taken in UTC.
func (s *statsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	prevMonth := monthStart.AddDate(0, -1, 0)

	var (
		totalPlaces, availablePlaces int64
		approved, pending, today     int64
		thisMonth, lastMonth         int64
		bookedHours                  float64
	)

	queries := []func() error{
		func() (err error) { totalPlaces, err = s.repo.CountPlaces(ctx, ""); return },
		func() (err error) { availablePlaces, err = s.repo.CountPlaces(ctx, config.PlaceAvailable); return },
		func() (err error) { approved, err = s.repo.CountBookings(ctx, config.Approved); return },
		func() (err error) { pending, err = s.repo.CountBookings(ctx, config.Pending); return },
		func() (err error) {
			today, err = s.repo.CountBookingsStarting(ctx, config.Approved, dayStart, dayStart.AddDate(0, 0, 1))
			return
		},
		func() (err error) { thisMonth, err = s.repo.CountBookingsStarting(ctx, "", monthStart, nextMonth); return },
		func() (err error) { lastMonth, err = s.repo.CountBookingsStarting(ctx, "", prevMonth, monthStart); return },
		func() (err error) { bookedHours, err = s.repo.BookedHours(ctx, monthStart, nextMonth); return },
	}
	if err := runAll(queries); err != nil {
		s.cfg.Log.Error("Failed to compute dashboard stats", "error", err)
		return nil, apperrors.Internal("Failed to compute stats", err)
	}

	growth := growthPercent(thisMonth, lastMonth)
	utilization := utilizationPercent(bookedHours, availablePlaces, nextMonth.Sub(monthStart).Hours())

	return &model.DashboardStats{
		TotalPlaces:      model.StatValue{Value: float64(totalPlaces)},
		ActiveBookings:   model.StatValue{Value: float64(approved)},
		PendingApprovals: model.StatValue{Value: float64(pending)},
		TodayBookings:    model.StatValue{Value: float64(today)},
		MonthlyGrowth:    model.StatValue{Value: growth, Change: fmt.Sprintf("%+.1f%%", growth)},
		UtilizationRate:  model.StatValue{Value: utilization, Change: fmt.Sprintf("%.1f%%", utilization)},
		IssuesReported:   model.StatValue{Value: 0},
	}, nil
}

// BookingsByMonth returns twelve entries for the current UTC year.
func (s *statsService) BookingsByMonth(ctx context.Context) ([]model.MonthlyBookings, error) {
	counts, err := s.repo.BookingsByMonth(ctx, s.now().UTC().Year())
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate bookings by month", "error", err)
		return nil, apperrors.Internal("Failed to compute stats", err)
	}

	result := make([]model.MonthlyBookings, 0, len(monthNames))
	for i, name := range monthNames {
		result = append(result, model.MonthlyBookings{Name: name, Bookings: counts[i+1]})
	}
	return result, nil
}

func runAll(queries []func() error) error {
	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	wg.Add(len(queries))
	for i, q := range queries {
		go func() {
			defer wg.Done()
			errs[i] = q()
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// growthPercent is the change from previous to current. A month following
// an empty one counts as 100% growth when it has any bookings.
func growthPercent(current, previous int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

func utilizationPercent(bookedHours float64, places int64, hoursInMonth float64) float64 {
	capacity := float64(places) * hoursInMonth
	if capacity <= 0 {
		return 0
	}
	return round1(math.Min(bookedHours/capacity*100, 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
