package period

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// MaxShift bounds the shift query parameter; 1200 months is a century.
const MaxShift = 1200

// FromContext reads a range from the query string:
//
//	period=day|week|month|custom  (default day)
//	date=YYYY-MM-DD               reference date, alias start (default: today)
//	end=YYYY-MM-DD                second bound of a custom range
//	shift=N                       navigate N steps forward or backward
func FromContext(c echo.Context, now time.Time) (Range, error) {
	ref := c.QueryParam("date")
	if ref == "" {
		ref = c.QueryParam("start")
	}
	if ref == "" {
		ref = Date(now).Format(DateLayout)
	}

	r, err := Parse(Type(c.QueryParam("period")), ref, c.QueryParam("end"))
	if err != nil {
		return Range{}, err
	}

	if s := c.QueryParam("shift"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Range{}, fmt.Errorf("invalid shift %q", s)
		}
		if n > MaxShift || n < -MaxShift {
			return Range{}, fmt.Errorf("shift %d out of range [-%d, %d]", n, MaxShift, MaxShift)
		}
		r = Shift(r, n)
	}
	return r, nil
}

// Response is a resolved range as returned by the API.
type Response struct {
	Range
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// MarshalJSON flattens the range next to the label and day count. Without it
// the promoted Range.MarshalJSON would drop both.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		rangeJSON
		Label string `json:"label"`
		Days  int    `json:"days"`
	}{rangeJSON: r.Range.wire(), Label: r.Label, Days: r.Days})
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var aux struct {
		rangeJSON
		Label string `json:"label"`
		Days  int    `json:"days"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	rng, err := aux.rangeJSON.decode()
	if err != nil {
		return err
	}
	*r = Response{Range: rng, Label: aux.Label, Days: aux.Days}
	return nil
}

func NewResponse(r Range) Response {
	r = Normalize(r)
	return Response{Range: r, Label: Label(r), Days: r.Days()}
}

// Clock returns the current time in the clinic's timezone.
type Clock func() time.Time

// ClockIn returns a Clock reading the wall clock in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}
