package http

import (
	"strconv"
	"strings"

	"github.com/karloscodes/cartridge"

	"statboard/internal/analytics"
)

// queryInt reads a positive integer query parameter. Missing or non-numeric
// values fall back to def; values below 1 are clamped to 1.
func queryInt(ctx *cartridge.Context, key string, def int) int {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return max(n, 1)
}

// parseTableQuery reads page, pageSize, q, sort and order.
func parseTableQuery(ctx *cartridge.Context) analytics.TableQuery {
	return analytics.TableQuery{
		Page:      queryInt(ctx, "page", analytics.DefaultPage),
		PageSize:  queryInt(ctx, "pageSize", analytics.DefaultPageSize),
		Search:    ctx.Query("q"),
		Sort:      ctx.Query("sort"),
		Direction: ctx.Query("order"),
	}
}

// parseExportQuery reads q, sort and order. Pagination parameters are ignored.
func parseExportQuery(ctx *cartridge.Context) analytics.ExportQuery {
	return analytics.ExportQuery{
		Search:    ctx.Query("q"),
		Sort:      ctx.Query("sort"),
		Direction: ctx.Query("order"),
	}
}
