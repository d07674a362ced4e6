package tokens

import "testing"

func TestCost(t *testing.T) {
	tests := []struct {
		model    Model
		duration int
		want     int
	}{
		{Tier1, 45, 10},
		{Tier1, 60, 10},
		{Tier1, 65, 20},
		{Tier1, 240, 40},
		{Tier2, 30, 15},
		{Tier2, 61, 30},
		{Tier2, 300, 75},
		{Tier3, 1, 25},
		{Tier3, 120, 50},
		{Tier3, 480, 200},
	}
	for _, tt := range tests {
		got := Cost(tt.model, tt.duration)
		if got != tt.want {
			t.Fatalf("Cost(%s, %d) = %d; want %d", string(tt.model), tt.duration, got, tt.want)
		}
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		model    Model
		duration int
		wantErr  bool
	}{
		{Tier1, 30, false},
		{Tier1, 240, false},
		{Tier1, 241, true},
		{Tier2, 300, false},
		{Tier2, 301, true},
		{Tier3, 480, false},
		{Tier3, 481, true},
		{Tier1, 0, true},
		{Tier1, -10, true},
		{Model("v9"), 30, true},
	}
	for _, tt := range tests {
		err := ValidateDuration(tt.model, tt.duration)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ValidateDuration(%s, %d) err = %v; want error %v", string(tt.model), tt.duration, err, tt.wantErr)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"tier1", Tier1, false},
		{"tier2", Tier2, false},
		{"tier3", Tier3, false},
		{"", "", true},
		{"tier4", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) err = %v; want error %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
