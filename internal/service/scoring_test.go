package service

import (
	"course_advisor_backend/internal/model"
	"testing"
)

func TestComputePercentages_NoSignal(t *testing.T) {
	scores := map[model.ProgramCode]float64{
		model.ProgramBSCS: 0,
		model.ProgramBSIT: 0,
		model.ProgramBSIS: 0,
		model.ProgramEE:   0,
	}

	got := ComputePercentages(scores)
	for _, p := range model.ProgramCodes {
		if got[p] != 25 {
			t.Errorf("percentage[%s] = %v, want 25", p, got[p])
		}
	}
}

func TestComputePercentages_Proportional(t *testing.T) {
	scores := map[model.ProgramCode]float64{
		model.ProgramBSCS: 30,
		model.ProgramBSIT: 10,
		model.ProgramBSIS: 0,
		model.ProgramEE:   0,
	}

	got := ComputePercentages(scores)
	want := map[model.ProgramCode]float64{
		model.ProgramBSCS: 75,
		model.ProgramBSIT: 25,
		model.ProgramBSIS: 0,
		model.ProgramEE:   0,
	}
	for _, p := range model.ProgramCodes {
		if got[p] != want[p] {
			t.Errorf("percentage[%s] = %v, want %v", p, got[p], want[p])
		}
	}
}

func TestComputePercentages_RoundingDriftAccepted(t *testing.T) {
	// 三等分各得33，加总99，不做二次归一
	scores := map[model.ProgramCode]float64{
		model.ProgramBSCS: 1,
		model.ProgramBSIT: 1,
		model.ProgramBSIS: 1,
		model.ProgramEE:   0,
	}

	got := ComputePercentages(scores)
	sum := 0.0
	for _, p := range model.ProgramCodes {
		sum += got[p]
	}
	if sum != 99 {
		t.Errorf("percentage sum = %v, want 99 (independent rounding)", sum)
	}
}

func TestPickRecommendedProgram(t *testing.T) {
	tests := []struct {
		name        string
		percentages map[model.ProgramCode]float64
		want        model.ProgramCode
	}{
		{
			name: "clear winner",
			percentages: map[model.ProgramCode]float64{
				model.ProgramBSCS: 75, model.ProgramBSIT: 25, model.ProgramBSIS: 0, model.ProgramEE: 0,
			},
			want: model.ProgramBSCS,
		},
		{
			name: "tie resolves to first declared",
			percentages: map[model.ProgramCode]float64{
				model.ProgramBSCS: 50, model.ProgramBSIT: 50, model.ProgramBSIS: 0, model.ProgramEE: 0,
			},
			want: model.ProgramBSCS,
		},
		{
			name: "later tie still resolves to earlier code",
			percentages: map[model.ProgramCode]float64{
				model.ProgramBSCS: 0, model.ProgramBSIT: 40, model.ProgramBSIS: 40, model.ProgramEE: 20,
			},
			want: model.ProgramBSIT,
		},
		{
			name: "uniform fallback goes to first code",
			percentages: map[model.ProgramCode]float64{
				model.ProgramBSCS: 25, model.ProgramBSIT: 25, model.ProgramBSIS: 25, model.ProgramEE: 25,
			},
			want: model.ProgramBSCS,
		},
		{
			name: "strictly greater later code wins",
			percentages: map[model.ProgramCode]float64{
				model.ProgramBSCS: 10, model.ProgramBSIT: 10, model.ProgramBSIS: 10, model.ProgramEE: 70,
			},
			want: model.ProgramEE,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PickRecommendedProgram(tc.percentages)
			if got != tc.want {
				t.Errorf("PickRecommendedProgram() = %s, want %s", got, tc.want)
			}
		})
	}
}
