package model

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStay_Overlaps(t *testing.T) {
	base := NewStay(date("2024-02-01"), date("2024-02-03"))

	tests := []struct {
		name  string
		other Stay
		want  bool
	}{
		{"identical", NewStay(date("2024-02-01"), date("2024-02-03")), true},
		{"starts inside", NewStay(date("2024-02-02"), date("2024-02-04")), true},
		{"ends inside", NewStay(date("2024-01-30"), date("2024-02-02")), true},
		{"contains", NewStay(date("2024-01-30"), date("2024-02-10")), true},
		{"adjacent after", NewStay(date("2024-02-03"), date("2024-02-05")), false},
		{"adjacent before", NewStay(date("2024-01-29"), date("2024-02-01")), false},
		{"disjoint", NewStay(date("2024-03-01"), date("2024-03-05")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", base, tt.other, got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("overlap must be symmetric for %s", tt.other)
			}
		})
	}
}

func instant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStay_OverlapsPartialDays(t *testing.T) {
	morning := NewStay(instant("2024-03-20T08:00:00Z"), instant("2024-03-20T12:00:00Z"))
	evening := NewStay(instant("2024-03-20T12:00:00Z"), instant("2024-03-20T18:00:00Z"))
	lunch := NewStay(instant("2024-03-20T11:00:00Z"), instant("2024-03-20T13:00:00Z"))

	if morning.Overlaps(evening) {
		t.Error("stays meeting at noon must not overlap")
	}
	if !morning.Overlaps(lunch) || !evening.Overlaps(lunch) {
		t.Error("lunch overlaps both halves of the day")
	}
}

func TestStay_WholeDays(t *testing.T) {
	tests := []struct {
		name string
		stay Stay
		want []string
	}{
		{"date only", NewStay(date("2024-01-10"), date("2024-01-15")),
			[]string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13", "2024-01-14"}},
		{"empty", NewStay(date("2024-01-10"), date("2024-01-10")), nil},
		{"partial ends", NewStay(instant("2024-03-10T06:00:00Z"), instant("2024-03-12T22:00:00Z")),
			[]string{"2024-03-11"}},
		{"within one day", NewStay(instant("2024-03-20T08:00:00Z"), instant("2024-03-20T18:00:00Z")), nil},
		{"midnight to partial", NewStay(date("2024-03-10"), instant("2024-03-11T10:00:00Z")),
			[]string{"2024-03-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := tt.stay.WholeDays()
			if len(days) != len(tt.want) {
				t.Fatalf("WholeDays(%s) = %v, want %v", tt.stay, days, tt.want)
			}
			for i, d := range days {
				if d.Format(DateLayout) != tt.want[i] || !d.Equal(TruncateToDay(d)) {
					t.Errorf("day %d = %s, want midnight of %s", i, d, tt.want[i])
				}
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-02-01", want: "2024-02-01"},
		{in: "2024-02-01T00:00:00Z", want: "2024-02-01"},
		{in: "2024-02-01T15:04:05Z", want: "2024-02-01T15:04:05Z"},
		{in: "2024-02-01T23:30:00-05:00", want: "2024-02-02T04:30:00Z"},
		{in: "2024-02-01T10:00:00.123456Z", want: "2024-02-01T10:00:00.123Z"},
		{in: "01/02/2024", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC, got %s", got.Location())
			}
			if FormatDate(got) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, FormatDate(got), tt.want)
			}
		})
	}
}
