package date

import (
	"errors"
	"testing"
	"time"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "date in daily header",
			text: "業務連絡スレッド 2024/12/10(火)",
			want: "2024-12-10",
		},
		{
			name: "date surrounded by text",
			text: "… 2024/12/10 …",
			want: "2024-12-10",
		},
		{
			name: "first of several dates wins",
			text: "2024/01/02 and 2024/03/04",
			want: "2024-01-02",
		},
		{
			name:    "no date",
			text:    "no date here",
			wantErr: true,
		},
		{
			name:    "dashes are not the wire format",
			text:    "2024-12-10",
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := Extract(test.text)
			if test.wantErr {
				if !errors.Is(err, ErrDateNotFound) {
					t.Fatalf("Extract(%q) error = %v, want ErrDateNotFound", test.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract(%q): %v", test.text, err)
			}
			if got != test.want {
				t.Errorf("Extract(%q) = %q, want %q", test.text, got, test.want)
			}
		})
	}
}

func TestTodayUsesJSTNotHostZone(t *testing.T) {
	defer func() { nowFn = time.Now }()

	// 23:30 UTC is already the next day in JST.
	nowFn = func() time.Time {
		return time.Date(2024, 12, 10, 23, 30, 0, 0, time.UTC)
	}
	if got := Today(); got != "2024-12-11" {
		t.Errorf("Today() = %q, want %q", got, "2024-12-11")
	}
}

func TestIsCurrent(t *testing.T) {
	defer func() { nowFn = time.Now }()

	nowFn = func() time.Time {
		return time.Date(2024, 12, 10, 12, 0, 0, 0, JST)
	}
	if !IsCurrent("2024-12-10") {
		t.Error("IsCurrent(today) = false, want true")
	}
	if IsCurrent("2024-12-09") {
		t.Error("IsCurrent(yesterday) = true, want false")
	}
}

func TestHeader(t *testing.T) {
	defer func() { nowFn = time.Now }()

	// 2024-12-05 is a Thursday.
	nowFn = func() time.Time {
		return time.Date(2024, 12, 5, 9, 0, 0, 0, JST)
	}
	if got := Header(); got != "2024/12/05(木)" {
		t.Errorf("Header() = %q, want %q", got, "2024/12/05(木)")
	}
}
