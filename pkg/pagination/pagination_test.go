package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/patients"+query, nil), httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Limit: DefaultLimit, Offset: 0}},
		{"?limit=50&offset=10", Params{Limit: 50, Offset: 10}},
		{"?limit=500", Params{Limit: MaxLimit, Offset: 0}},
		{"?limit=0", Params{Limit: DefaultLimit, Offset: 0}},
		{"?offset=-5", Params{Limit: DefaultLimit, Offset: 0}},
		{"?limit=abc&offset=xyz", Params{Limit: DefaultLimit, Offset: 0}},
		// The old bundle-style names are not read.
		{"?_count=5&_offset=5", Params{Limit: DefaultLimit, Offset: 0}},
	}
	for _, tt := range tests {
		if got := paramsFor(t, tt.query); got != tt.want {
			t.Errorf("FromContext(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestNewResponse_Pages(t *testing.T) {
	tests := []struct {
		name          string
		total, offset int
		hasMore       bool
		next          int
	}{
		{"first of three", 25, 0, true, 10},
		{"middle", 25, 10, true, 20},
		{"last partial", 25, 20, false, 0},
		{"exact end", 20, 10, false, 0},
		{"empty", 0, 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponse([]string{}, tt.total, 10, tt.offset)
			if r.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", r.HasMore, tt.hasMore)
			}
			switch {
			case tt.hasMore && (r.NextOffset == nil || *r.NextOffset != tt.next):
				t.Errorf("NextOffset = %v, want %d", r.NextOffset, tt.next)
			case !tt.hasMore && r.NextOffset != nil:
				t.Errorf("NextOffset = %d, want none", *r.NextOffset)
			}
		})
	}
}

func TestNewResponse_JSON(t *testing.T) {
	data, err := json.Marshal(NewResponse([]int{1, 2}, 3, 2, 0))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"data", "total", "limit", "offset", "has_more", "next_offset"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}

	data, _ = json.Marshal(NewResponse([]int{1}, 1, 2, 0))
	got = map[string]interface{}{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["next_offset"]; ok {
		t.Errorf("next_offset should be omitted on the last page: %s", data)
	}
}

func TestParams_PreviousOffset(t *testing.T) {
	tests := []struct {
		params   Params
		want     int
		previous bool
	}{
		{Params{Limit: 10, Offset: 20}, 10, true},
		{Params{Limit: 10, Offset: 5}, 0, true},
		{Params{Limit: 10, Offset: 0}, 0, false},
	}
	for _, tt := range tests {
		if got := tt.params.PreviousOffset(); got != tt.want {
			t.Errorf("%+v.PreviousOffset() = %d, want %d", tt.params, got, tt.want)
		}
		if got := tt.params.HasPrevious(); got != tt.previous {
			t.Errorf("%+v.HasPrevious() = %v, want %v", tt.params, got, tt.previous)
		}
	}
}
