package model

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestItemConsistent(t *testing.T) {
	tests := []struct {
		stock, available int
		want             bool
	}{
		{10, 10, true},
		{10, 7, true},
		{0, 0, true},
		{5, 6, false},
		{5, -1, false},
	}

	for _, tt := range tests {
		item := Item{Stock: tt.stock, Available: tt.available}
		if got := item.Consistent(); got != tt.want {
			t.Errorf("Item{%d, %d}.Consistent() = %v, want %v", tt.stock, tt.available, got, tt.want)
		}
	}

	if got := (Item{Stock: 10, Available: 7}).Reserved(); got != 3 {
		t.Errorf("expected 3 reserved, got %d", got)
	}
}

func TestProjectActiveOn(t *testing.T) {
	p := Project{
		StartDate: civil.Date{Year: 2025, Month: 3, Day: 1},
		EndDate:   civil.Date{Year: 2025, Month: 3, Day: 10},
	}

	tests := []struct {
		date civil.Date
		want bool
	}{
		{civil.Date{Year: 2025, Month: 2, Day: 28}, false},
		{civil.Date{Year: 2025, Month: 3, Day: 1}, true},
		{civil.Date{Year: 2025, Month: 3, Day: 5}, true},
		{civil.Date{Year: 2025, Month: 3, Day: 10}, true},
		{civil.Date{Year: 2025, Month: 3, Day: 11}, false},
	}

	for _, tt := range tests {
		if got := p.ActiveOn(tt.date); got != tt.want {
			t.Errorf("ActiveOn(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}
