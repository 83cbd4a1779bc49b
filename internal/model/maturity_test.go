package model

import (
	"errors"
	"testing"
)

func TestMaturityTable_TargetMonths(t *testing.T) {
	table := DefaultMaturityTable()

	tests := []struct {
		employees int
		want      int
	}{
		{0, 3},
		{1, 3},
		{2, 3},
		{3, 6},
		{4, 6},
		{6, 6},
		{7, 12},
		{20, 12},
	}

	for _, tt := range tests {
		if got := table.TargetMonths(tt.employees); got != tt.want {
			t.Errorf("TargetMonths(%d) = %d, want %d", tt.employees, got, tt.want)
		}
	}
}

func TestMaturityTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   MaturityTable
		wantErr bool
	}{
		{"default", DefaultMaturityTable(), false},
		{"empty", MaturityTable{}, true},
		{"closed last band", MaturityTable{{MaxEmployees: 2, TargetMonths: 3}}, true},
		{"open band not last", MaturityTable{
			{MaxEmployees: -1, TargetMonths: 3},
			{MaxEmployees: -1, TargetMonths: 6},
		}, true},
		{"non-increasing bounds", MaturityTable{
			{MaxEmployees: 6, TargetMonths: 3},
			{MaxEmployees: 2, TargetMonths: 6},
			{MaxEmployees: -1, TargetMonths: 12},
		}, true},
		{"zero target", MaturityTable{
			{MaxEmployees: 2, TargetMonths: 0},
			{MaxEmployees: -1, TargetMonths: 12},
		}, true},
		{"single open band", MaturityTable{{MaxEmployees: -1, TargetMonths: 6}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("error should wrap ErrInvalidScenario, got %v", err)
			}
		})
	}
}
