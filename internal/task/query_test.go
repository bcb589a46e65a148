package task

import (
	"net/url"
	"testing"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, DefaultListQuery(), q)
	assert.Equal(t, 0, q.Offset())
}

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery(url.Values{
		"completed": {"false"},
		"priority":  {"LOW"},
		"sort":      {"-dueDate"},
		"page":      {"3"},
		"limit":     {"500"},
	})
	require.NoError(t, err)

	require.NotNil(t, q.Completed)
	assert.False(t, *q.Completed)
	require.NotNil(t, q.Priority)
	assert.Equal(t, PriorityLow, *q.Priority)
	assert.Equal(t, SortDueDate, q.SortBy)
	assert.True(t, q.SortDesc)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, maxLimit, q.Limit)
	assert.Equal(t, 2*maxLimit, q.Offset())
}

func TestParseListQueryAscendingSort(t *testing.T) {
	q, err := ParseListQuery(url.Values{"sort": {"title"}})
	require.NoError(t, err)
	assert.Equal(t, SortTitle, q.SortBy)
	assert.False(t, q.SortDesc)
}

func TestParseListQueryRejectsBadValues(t *testing.T) {
	cases := map[string]url.Values{
		"completed": {"completed": {"maybe"}},
		"priority":  {"priority": {"urgent"}},
		"sort":      {"sort": {"password"}},
		"page zero": {"page": {"0"}},
		"limit nan": {"limit": {"ten"}},
		"page huge": {"page": {"100000000000000000"}, "limit": {"100"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseListQuery(values)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestParseListQueryLargestPageKeepsOffsetPositive(t *testing.T) {
	q, err := ParseListQuery(url.Values{"page": {"2147483647"}, "limit": {"100"}})
	require.NoError(t, err)
	assert.Equal(t, maxPage, q.Page)
	assert.Positive(t, q.Offset())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 10, TotalPages: 0}, NewPagination(0, DefaultListQuery()))
	assert.Equal(t, Pagination{Total: 21, Page: 1, Limit: 10, TotalPages: 3}, NewPagination(21, DefaultListQuery()))
	assert.Equal(t, Pagination{Total: 20, Page: 1, Limit: 10, TotalPages: 2}, NewPagination(20, DefaultListQuery()))
}
