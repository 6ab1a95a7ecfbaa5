package pagination

import (
	"encoding/json"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "duediligence/pkg/domain-errors"
)

type PaginationSuite struct {
	suite.Suite
}

func TestPaginationSuite(t *testing.T) {
	suite.Run(t, new(PaginationSuite))
}

func (s *PaginationSuite) TestFromQueryDefaults() {
	req, err := FromQuery(url.Values{})
	s.Require().NoError(err)
	s.Equal(Request{Page: 1, Limit: 10, OrderBy: "createdAt", OrderDirection: Desc}, req)
	s.Equal(0, req.Offset())
}

func (s *PaginationSuite) TestFromQueryParsesValues() {
	q := url.Values{
		"page":           {"3"},
		"limit":          {"25"},
		"orderBy":        {"counterpartyName"},
		"orderDirection": {"ASC"},
	}
	req, err := FromQuery(q, "counterpartyName", "status")
	s.Require().NoError(err)
	s.Equal(3, req.Page)
	s.Equal(25, req.Limit)
	s.Equal("counterpartyName", req.OrderBy)
	s.Equal(Asc, req.OrderDirection)
	s.Equal(50, req.Offset())
}

func (s *PaginationSuite) TestFromQueryRejectsInvalidValues() {
	cases := map[string]url.Values{
		"zero page":         {"page": {"0"}},
		"negative page":     {"page": {"-2"}},
		"non-numeric page":  {"page": {"two"}},
		"zero limit":        {"limit": {"0"}},
		"limit above max":   {"limit": {"101"}},
		"unknown orderBy":   {"orderBy": {"password"}},
		"unknown direction": {"orderDirection": {"sideways"}},
		"non-numeric limit": {"limit": {"ten"}},
	}
	for name, q := range cases {
		s.Run(name, func() {
			_, err := FromQuery(q, "status")
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *PaginationSuite) TestTotalPages() {
	s.Equal(1, TotalPages(0, 10), "empty result still has one page")
	s.Equal(1, TotalPages(10, 10))
	s.Equal(2, TotalPages(11, 10))
	s.Equal(4, TotalPages(31, 10))
	s.Equal(7, TotalPages(7, 1))
}

// TestPageBeyondEndEchoesRequestedPage pins the boundary behaviour: requesting
// past the last page returns no data and does not clamp the page number.
func (s *PaginationSuite) TestPageBeyondEndEchoesRequestedPage() {
	all := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	limit := 5
	totalPages := TotalPages(len(all), limit)
	s.Require().Equal(3, totalPages)

	req := Request{Page: totalPages + 5, Limit: limit, OrderBy: DefaultOrderBy, OrderDirection: Desc}
	page := NewPage(req, Slice(req, all), len(all))

	s.Empty(page.Data)
	s.NotNil(page.Data)
	s.Equal(totalPages+5, page.Metadata.Page)
	s.Equal(totalPages, page.Metadata.TotalPages)
	s.Equal(limit, page.Metadata.Limit)
}

func (s *PaginationSuite) TestSliceWindows() {
	all := []string{"a", "b", "c", "d", "e"}

	s.Equal([]string{"a", "b"}, Slice(Request{Page: 1, Limit: 2}, all))
	s.Equal([]string{"c", "d"}, Slice(Request{Page: 2, Limit: 2}, all))
	s.Equal([]string{"e"}, Slice(Request{Page: 3, Limit: 2}, all))
	s.Equal([]string{}, Slice(Request{Page: 4, Limit: 2}, all))
}

func (s *PaginationSuite) TestHugePageIsPastTheEnd() {
	req, err := FromQuery(url.Values{"page": {"9223372036854775807"}, "limit": {"2"}})
	s.Require().NoError(err)
	s.Equal(math.MaxInt, req.Offset())

	s.NotPanics(func() {
		data := Slice(req, []int{1, 2, 3})
		s.Empty(data)
		s.NotNil(data)

		page := NewPage(req, data, 3)
		s.Equal(9223372036854775807, page.Metadata.Page)
		s.Equal(2, page.Metadata.TotalPages)
	})
}

func (s *PaginationSuite) TestOffsetNearOverflowBoundary() {
	last := Request{Page: math.MaxInt/MaxLimit + 1, Limit: MaxLimit}
	s.Equal((math.MaxInt/MaxLimit)*MaxLimit, last.Offset())

	beyond := Request{Page: math.MaxInt/MaxLimit + 2, Limit: MaxLimit}
	s.Equal(math.MaxInt, beyond.Offset())
	s.Empty(Slice(beyond, []string{"a"}))
}

func TestEmptyPageSerialisesDataAsArray(t *testing.T) {
	page := NewPage[string](Default(), nil, 0)

	body, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"metadata":{"page":1,"totalPages":1,"limit":10}}`, string(body))
}

func TestMapKeepsMetadata(t *testing.T) {
	page := NewPage(Request{Page: 2, Limit: 2}, []int{3, 4}, 5)
	mapped := Map(page, func(v int) string { return string(rune('a' + v)) })

	assert.Equal(t, []string{"d", "e"}, mapped.Data)
	assert.Equal(t, page.Metadata, mapped.Metadata)
}
