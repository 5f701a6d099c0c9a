package scheduling

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusRules_Ranks(t *testing.T) {
	order := []AppointmentStatus{StatusInProgress, StatusConfirmed, StatusScheduled, StatusCompleted}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() <= order[i].Rank() {
			t.Errorf("expected %s to outrank %s", order[i-1], order[i])
		}
	}
	if StatusCancelled.Rank() != StatusNoShow.Rank() {
		t.Error("expected cancelled and no-show to share a rank")
	}
	if StatusCompleted.Rank() <= StatusCancelled.Rank() {
		t.Error("expected completed to outrank cancelled")
	}
	if AppointmentStatus("unknown").Rank() != 0 || AppointmentStatus("unknown").Valid() {
		t.Error("expected unknown status to have rank 0")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	if err != nil || h != 9 || m != 30 {
		t.Errorf("unexpected result %d:%d %v", h, m, err)
	}
	for _, bad := range []string{"", "9:30", "24:00", "12:60", "0930", "09:30:00"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAppointment_Window(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	a := &Appointment{Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Time: "14:15"}
	start, end, err := a.Window(loc)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2026, 10, 19, 17, 15, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %s", start)
	}
	if end.Sub(start) != DefaultDuration*time.Minute {
		t.Errorf("expected default duration, got %s", end.Sub(start))
	}
}

func TestAppointment_JSONDate(t *testing.T) {
	var a Appointment
	if err := json.Unmarshal([]byte(`{"date":"2026-10-19","time":"09:00","price":"150.00"}`), &a); err != nil {
		t.Fatal(err)
	}
	if !a.Date.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", a.Date)
	}
	if a.Price.String() != "150" {
		t.Errorf("unexpected price %s", a.Price)
	}
	out, _ := json.Marshal(a)
	var m map[string]interface{}
	json.Unmarshal(out, &m)
	if m["date"] != "2026-10-19" {
		t.Errorf("expected ISO date, got %v", m["date"])
	}
}
