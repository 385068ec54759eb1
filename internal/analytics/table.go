package analytics

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Table defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// SortDirection orders a result set.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection maps a request token onto a direction. Tokens other than
// "asc" and "desc" resolve to fallback.
func ParseSortDirection(token string, fallback SortDirection) SortDirection {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case string(SortAsc):
		return SortAsc
	case string(SortDesc):
		return SortDesc
	default:
		return fallback
	}
}

// SortKey names a sortable page column.
type SortKey string

const (
	SortByPage           SortKey = "page"
	SortByViews          SortKey = "views"
	SortByUniqueVisitors SortKey = "uniqueVisitors"
	SortByBounceRate     SortKey = "bounceRate"
	SortByConversions    SortKey = "conversions"
	SortByAvgDuration    SortKey = "avgDurationSec"
)

// DefaultSortKey is used when a request names no key or an unknown one.
const DefaultSortKey = SortByViews

type sortField struct {
	column string
	value  func(PageStat) int // nil for text columns
}

// sortFields is the closed set of sortable columns.
var sortFields = map[SortKey]sortField{
	SortByPage:           {column: "page"},
	SortByViews:          {column: "views", value: func(p PageStat) int { return p.Views }},
	SortByUniqueVisitors: {column: "unique_visitors", value: func(p PageStat) int { return p.UniqueVisitors }},
	SortByBounceRate:     {column: "bounce_rate", value: func(p PageStat) int { return p.BounceRate }},
	SortByConversions:    {column: "conversions", value: func(p PageStat) int { return p.Conversions }},
	SortByAvgDuration:    {column: "avg_duration_sec", value: func(p PageStat) int { return p.AvgDurationSec }},
}

// ResolveSortKey returns the sort key named by token, or DefaultSortKey.
func ResolveSortKey(token string) SortKey {
	key := SortKey(strings.TrimSpace(token))
	if _, ok := sortFields[key]; ok {
		return key
	}
	return DefaultSortKey
}

// PageOrder is a resolved sort over page rows.
type PageOrder struct {
	Key       SortKey
	Direction SortDirection
}

// NewPageOrder resolves raw request tokens into an order.
func NewPageOrder(key, direction string, fallback SortDirection) PageOrder {
	return PageOrder{
		Key:       ResolveSortKey(key),
		Direction: ParseSortDirection(direction, fallback),
	}
}

// Column returns the storage column backing the order.
func (o PageOrder) Column() string {
	return o.field().column
}

// Descending reports whether the order is descending. Anything but asc is.
func (o PageOrder) Descending() bool {
	return o.Direction != SortAsc
}

// Collated reports whether the column compares as text with locale rules.
func (o PageOrder) Collated() bool {
	return o.field().value == nil
}

func (o PageOrder) field() sortField {
	if f, ok := sortFields[o.Key]; ok {
		return f
	}
	return sortFields[DefaultSortKey]
}

// PageFilter selects page rows by a search on the page path.
type PageFilter struct {
	Search string // trimmed and lower-cased
}

// NewPageFilter normalizes a raw search string.
func NewPageFilter(search string) PageFilter {
	return PageFilter{Search: strings.ToLower(strings.TrimSpace(search))}
}

// Matches reports whether the row's page path contains the search string.
func (f PageFilter) Matches(p PageStat) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Page), f.Search)
}

// FilterPages returns the rows matching filter, preserving their order.
func FilterPages(rows []PageStat, filter PageFilter) []PageStat {
	matched := make([]PageStat, 0, len(rows))
	for _, row := range rows {
		if filter.Matches(row) {
			matched = append(matched, row)
		}
	}
	return matched
}

// SortPages returns a stably sorted copy of rows. Equal keys keep their input order.
func SortPages(rows []PageStat, order PageOrder) []PageStat {
	sorted := slices.Clone(rows)
	cmp := comparePages(order)
	slices.SortStableFunc(sorted, cmp)
	return sorted
}

func comparePages(order PageOrder) func(a, b PageStat) int {
	var cmp func(a, b PageStat) int
	if order.Collated() {
		// Collators keep internal buffers; one per sort.
		collator := collate.New(language.English)
		cmp = func(a, b PageStat) int {
			return collator.CompareString(a.Page, b.Page)
		}
	} else {
		value := order.field().value
		cmp = func(a, b PageStat) int {
			return compareInts(value(a), value(b))
		}
	}

	if order.Descending() {
		return func(a, b PageStat) int { return cmp(b, a) }
	}
	return cmp
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Offset returns the zero-based index of the first row of page. Pages whose
// offset does not fit in an int saturate at math.MaxInt, past any data set.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// Paginate slices one page out of rows. Pages past the end are empty.
func Paginate(rows []PageStat, page, pageSize int) []PageStat {
	return Window(rows, pageSize, Offset(page, pageSize))
}

// Window applies limit/offset semantics to rows. A limit <= 0 keeps every
// row from offset on.
func Window(rows []PageStat, limit, offset int) []PageStat {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []PageStat{}
	}
	end := len(rows)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return rows[offset:end]
}

// TotalPages returns ceil(total/pageSize), which is 0 for an empty set.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// FormatDuration renders seconds as "{minutes}m {seconds}s".
func FormatDuration(secs int) string {
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// TableQuery is a request for one page of the analytics table.
type TableQuery struct {
	Page      int
	PageSize  int
	Search    string
	Sort      string
	Direction string
}

// Normalize clamps page and page size to at least 1. Missing values are
// defaulted by the request parser, not here.
func (q TableQuery) Normalize() TableQuery {
	q.Page = max(q.Page, 1)
	q.PageSize = max(q.PageSize, 1)
	return q
}

// Order resolves the query's sort. Tables sort descending unless asked for asc.
func (q TableQuery) Order() PageOrder {
	return NewPageOrder(q.Sort, q.Direction, SortDesc)
}

// TableRow is the presentation form of a page row.
type TableRow struct {
	ID             string `json:"id"`
	Page           string `json:"page"`
	Views          int    `json:"views"`
	UniqueVisitors int    `json:"uniqueVisitors"`
	BounceRate     int    `json:"bounceRate"`
	AvgDuration    string `json:"avgDuration"`
	Conversions    int    `json:"conversions"`
}

// NewTableRow converts a stored row to its presentation form.
func NewTableRow(p PageStat) TableRow {
	return TableRow{
		ID:             strconv.FormatUint(uint64(p.ID), 10),
		Page:           p.Page,
		Views:          p.Views,
		UniqueVisitors: p.UniqueVisitors,
		BounceRate:     p.BounceRate,
		AvgDuration:    FormatDuration(p.AvgDurationSec),
		Conversions:    p.Conversions,
	}
}

// TableMeta describes the pagination of a TableResult.
type TableMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// TableResult is one page of the analytics table.
type TableResult struct {
	Data []TableRow `json:"data"`
	Meta TableMeta  `json:"meta"`
}

// BuildTableResult assembles a result from one page of rows and the total
// number of matching rows.
func BuildTableResult(rows []PageStat, total int64, q TableQuery) *TableResult {
	data := make([]TableRow, len(rows))
	for i, row := range rows {
		data[i] = NewTableRow(row)
	}
	return &TableResult{
		Data: data,
		Meta: TableMeta{
			Total:      total,
			Page:       q.Page,
			PageSize:   q.PageSize,
			TotalPages: TotalPages(total, q.PageSize),
		},
	}
}

// QueryTableInMemory runs a table query over an in-memory row set.
func QueryTableInMemory(rows []PageStat, q TableQuery) *TableResult {
	q = q.Normalize()
	matched := SortPages(FilterPages(rows, NewPageFilter(q.Search)), q.Order())
	return BuildTableResult(Paginate(matched, q.Page, q.PageSize), int64(len(matched)), q)
}
