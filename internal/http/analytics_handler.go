package http

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"statboard/internal/analytics"
)

// DashboardHandlers serves the analytics API from a Service.
type DashboardHandlers struct {
	svc *analytics.Service
}

func NewDashboardHandlers(svc *analytics.Service) *DashboardHandlers {
	return &DashboardHandlers{svc: svc}
}

// AnalyticsTableAction handles GET /api/analytics
func (h *DashboardHandlers) AnalyticsTableAction(ctx *cartridge.Context) error {
	q := parseTableQuery(ctx)

	result, err := h.svc.QueryTable(ctx.UserContext(), q)
	if err != nil {
		ctx.Logger.Error("Failed to query analytics table",
			slog.Int("page", q.Page),
			slog.Int("pageSize", q.PageSize),
			slog.Any("error", err))
		return serverError(ctx, "Failed to load analytics")
	}

	return ctx.JSON(result)
}

// MetricsAction handles GET /api/metrics
func (h *DashboardHandlers) MetricsAction(ctx *cartridge.Context) error {
	data, err := h.svc.Dashboard(ctx.UserContext())
	if err != nil {
		ctx.Logger.Error("Failed to load dashboard metrics", slog.Any("error", err))
		return serverError(ctx, "Failed to load metrics")
	}

	return ctx.JSON(data)
}

// ExportAnalyticsAction handles GET /api/export/analytics
func (h *DashboardHandlers) ExportAnalyticsAction(ctx *cartridge.Context) error {
	export, err := h.svc.Export(ctx.UserContext(), parseExportQuery(ctx))
	if err != nil {
		ctx.Logger.Error("Failed to export analytics", slog.Any("error", err))
		return serverError(ctx, "Failed to export analytics")
	}

	ctx.Logger.Debug("Exported analytics",
		slog.String("filename", export.Filename),
		slog.Int("rows", export.Rows))

	ctx.Set(fiber.HeaderContentType, "text/csv")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename))
	return ctx.SendString(export.Body)
}

func serverError(ctx *cartridge.Context, message string) error {
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
