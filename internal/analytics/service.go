package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"statboard/internal/pkg/async"
	"statboard/internal/timeframe"
)

// DashboardData is the payload of the metrics endpoint.
type DashboardData struct {
	Metrics          []MetricCard   `json:"metrics"`
	ChartData        ChartData      `json:"chartData"`
	RevenueByChannel []ChannelShare `json:"revenueByChannel"`
}

// Service answers dashboard requests from a Store.
type Service struct {
	store  Store
	clock  timeframe.TimeProvider
	loc    *time.Location
	logger *slog.Logger
	pool   *async.Pool
}

// NewService wires a Service. A nil clock uses the wall clock and a nil
// location uses time.Local.
func NewService(store Store, clock timeframe.TimeProvider, loc *time.Location, logger *slog.Logger) *Service {
	if clock == nil {
		clock = &timeframe.DefaultTimeProvider{}
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		clock:  clock,
		loc:    loc,
		logger: logger,
		pool:   async.NewPool(3),
	}
}

// Now returns the current time in the service's calendar location.
func (s *Service) Now() time.Time {
	return s.clock.Now(s.loc)
}

// QueryTable returns one page of the analytics table.
func (s *Service) QueryTable(ctx context.Context, q TableQuery) (*TableResult, error) {
	q = q.Normalize()
	filter := NewPageFilter(q.Search)

	total, err := s.store.CountPages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	rows, err := s.store.FindPages(ctx, filter, q.Order(), q.PageSize, Offset(q.Page, q.PageSize))
	if err != nil {
		return nil, fmt.Errorf("find pages: %w", err)
	}

	return BuildTableResult(rows, total, q), nil
}

// Export encodes every row matching q as CSV.
func (s *Service) Export(ctx context.Context, q ExportQuery) (*Export, error) {
	rows, err := s.store.FindPages(ctx, NewPageFilter(q.Search), q.Order(), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("find export rows: %w", err)
	}

	return &Export{
		Filename: ExportFilename(s.clock.Now(time.UTC)),
		Body:     EncodeCSV(rows),
		Rows:     len(rows),
	}, nil
}

// Dashboard loads the KPI cards, the revenue chart and the channel split.
// The three store reads run concurrently.
func (s *Service) Dashboard(ctx context.Context) (*DashboardData, error) {
	days := timeframe.TrailingDays(s.Now(), SeriesWindowDays)
	from, to := RevenueWindow(days)

	tasks := []async.Task{
		{
			Name: "metrics",
			Execute: func(ctx context.Context) (any, error) {
				return s.store.LatestMetrics(ctx, 2)
			},
		},
		{
			Name: "revenue",
			Execute: func(ctx context.Context) (any, error) {
				return s.store.FindRevenue(ctx, from, to)
			},
		},
		{
			Name: "channels",
			Execute: func(ctx context.Context) (any, error) {
				return s.store.SumRevenueByChannel(ctx)
			},
		},
	}

	results := s.pool.Execute(ctx, tasks)
	for _, task := range tasks {
		result, ok := results[task.Name]
		if !ok {
			return nil, fmt.Errorf("load %s: %w", task.Name, context.Cause(ctx))
		}
		if result.Err != nil {
			s.logger.Error("Dashboard query failed",
				slog.String("query", task.Name),
				slog.Any("error", result.Err))
			return nil, fmt.Errorf("load %s: %w", task.Name, result.Err)
		}
	}

	snapshots, _ := results["metrics"].Data.([]DailyMetric)
	entries, _ := results["revenue"].Data.([]RevenueEntry)
	totals, _ := results["channels"].Data.([]ChannelTotal)

	current, previous := LatestPair(snapshots)
	return &DashboardData{
		Metrics:          BuildMetricCards(current, previous),
		ChartData:        BuildRevenueChart(entries, days),
		RevenueByChannel: ChannelShares(totals),
	}, nil
}
