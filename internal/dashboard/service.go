package dashboard

import (
	"context"
	"fmt"

	"github.com/salesdash/salesdash/internal/sales"
	"github.com/salesdash/salesdash/internal/source"
)

// Loader returns the sales table for a set of endpoint parameters.
type Loader interface {
	Load(ctx context.Context, p source.Params) (sales.Table, error)
}

// Service loads tables through the data source and runs the screen pipelines.
type Service struct {
	loader Loader
}

// NewService constructs the service.
func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Dashboard loads the region/year slice and runs the dashboard pipeline.
func (s *Service) Dashboard(ctx context.Context, state DashboardState) (DashboardResult, error) {
	state = state.Normalize()
	if err := state.Validate(); err != nil {
		return DashboardResult{}, err
	}
	table, err := s.loader.Load(ctx, source.Params{Region: state.Region, Year: state.Year})
	if err != nil {
		return DashboardResult{}, fmt.Errorf("dashboard: load: %w", err)
	}
	return RunDashboard(table, state), nil
}

// Raw loads the full table and runs the raw data pipeline.
func (s *Service) Raw(ctx context.Context, state RawState) (RawResult, error) {
	if err := state.Validate(); err != nil {
		return RawResult{}, err
	}
	table, err := s.loader.Load(ctx, source.Params{})
	if err != nil {
		return RawResult{}, fmt.Errorf("dashboard: load: %w", err)
	}
	return RunRaw(table, state), nil
}
