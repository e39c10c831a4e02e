package status_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/JaimeStill/halalcheck/internal/status"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    status.Status
		wantErr bool
	}{
		{"Halal", status.Halal, false},
		{"haram", status.Haram, false},
		{"  MUSHBOOH ", status.Mushbooh, false},
		{"unknown", status.Unknown, false},
		{"kosher", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := status.Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, status.ErrInvalid) {
					t.Fatalf("Parse(%q) err = %v, want ErrInvalid", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVoteRejectsUnknown(t *testing.T) {
	if _, err := status.ParseVote("Unknown"); !errors.Is(err, status.ErrInvalid) {
		t.Errorf("ParseVote(Unknown) err = %v, want ErrInvalid", err)
	}
	if got, err := status.ParseVote("halal"); err != nil || got != status.Halal {
		t.Errorf("ParseVote(halal) = %q, %v", got, err)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var s status.Status
	if err := json.Unmarshal([]byte(`"haram"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != status.Haram {
		t.Errorf("got %q, want Haram", s)
	}

	if err := json.Unmarshal([]byte(`"pending"`), &s); !errors.Is(err, status.ErrInvalid) {
		t.Errorf("unmarshal invalid err = %v, want ErrInvalid", err)
	}
}

func TestAggregate(t *testing.T) {
	H, X, M, U := status.Halal, status.Haram, status.Mushbooh, status.Unknown

	tests := []struct {
		name  string
		items []status.Status
		want  status.Status
	}{
		{"empty", nil, U},
		{"all halal", []status.Status{H, H, H}, H},
		{"single halal", []status.Status{H}, H},
		{"haram wins over everything", []status.Status{H, M, X, U}, X},
		{"mushbooh without haram", []status.Status{H, M, U}, M},
		{"halal with unknown", []status.Status{H, U}, U},
		{"only unknown", []status.Status{U, U}, U},
		{"haram alone", []status.Status{X}, X},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status.Aggregate(tt.items); got != tt.want {
				t.Errorf("Aggregate(%v) = %q, want %q", tt.items, got, tt.want)
			}
		})
	}
}

func TestAggregateExhaustive(t *testing.T) {
	values := []status.Status{status.Halal, status.Haram, status.Mushbooh, status.Unknown}

	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				items := []status.Status{a, b, c}
				got := status.Aggregate(items)

				var want status.Status
				switch {
				case a == status.Haram || b == status.Haram || c == status.Haram:
					want = status.Haram
				case a == status.Mushbooh || b == status.Mushbooh || c == status.Mushbooh:
					want = status.Mushbooh
				case a == status.Halal && b == status.Halal && c == status.Halal:
					want = status.Halal
				default:
					want = status.Unknown
				}

				if got != want {
					t.Errorf("Aggregate(%v) = %q, want %q", items, got, want)
				}
			}
		}
	}
}

func TestPlurality(t *testing.T) {
	H, X, M := status.Halal, status.Haram, status.Mushbooh

	tests := []struct {
		name   string
		votes  []status.Status
		want   status.Status
		wantOK bool
	}{
		{"no votes", nil, "", false},
		{"single vote", []status.Status{M}, M, true},
		{"clear majority", []status.Status{H, X, X}, X, true},
		{"tie goes to first seen", []status.Status{H, X, X, H}, H, true},
		{"tie order reversed", []status.Status{X, H, H, X}, X, true},
		{"three way tie", []status.Status{M, H, X}, M, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := status.Plurality(tt.votes)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Plurality(%v) = %q, %v; want %q, %v", tt.votes, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
