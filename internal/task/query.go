package task

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/abduss/gotask/internal/apperror"
)

// Sortable fields.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortDueDate   = "dueDate"
	SortPriority  = "priority"
	SortTitle     = "title"
	SortCompleted = "completed"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	// maxPage keeps (page-1)*limit within int range.
	maxPage = math.MaxInt32
)

var sortable = map[string]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortDueDate:   true,
	SortPriority:  true,
	SortTitle:     true,
	SortCompleted: true,
}

// ListQuery filters, orders and pages an owner's tasks.
type ListQuery struct {
	Completed *bool
	Priority  *Priority
	SortBy    string
	SortDesc  bool
	Page      int
	Limit     int
}

// Offset is the number of rows skipped before the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// DefaultListQuery returns newest-first, first page of ten.
func DefaultListQuery() ListQuery {
	return ListQuery{SortBy: SortCreatedAt, SortDesc: true, Page: defaultPage, Limit: defaultLimit}
}

// ParseListQuery reads completed, priority, sort, page and limit from a query string.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := DefaultListQuery()

	if raw := strings.TrimSpace(values.Get("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return ListQuery{}, apperror.Validation(fmt.Sprintf("completed must be true or false, got %q", raw))
		}
		q.Completed = &completed
	}

	if raw := strings.TrimSpace(values.Get("priority")); raw != "" {
		p := Priority(strings.ToLower(raw))
		if !p.Valid() {
			return ListQuery{}, apperror.Validation("priority must be one of [low medium high]")
		}
		q.Priority = &p
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		field, desc := strings.CutPrefix(raw, "-")
		if !sortable[field] {
			return ListQuery{}, apperror.Validation(fmt.Sprintf("cannot sort by %q", field))
		}
		q.SortBy = field
		q.SortDesc = desc
	}

	var err error
	if q.Page, err = positiveInt(values, "page", defaultPage); err != nil {
		return ListQuery{}, err
	}
	if q.Page > maxPage {
		return ListQuery{}, apperror.Validation(fmt.Sprintf("page can not be more than %d", maxPage))
	}
	if q.Limit, err = positiveInt(values, "limit", defaultLimit); err != nil {
		return ListQuery{}, err
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	return q, nil
}

func positiveInt(values url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.Validation(fmt.Sprintf("%s must be a positive integer", key))
	}
	return n, nil
}

// NewPagination computes page metadata for total matching rows.
func NewPagination(total int64, q ListQuery) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Pagination{Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}
