package path

import "testing"

func TestSchedulePlace(t *testing.T) {
	tests := []struct {
		name      string
		hours     []float64
		budget    float64
		wantWeeks []int
	}{
		{"overflowing module alone then next week", []float64{15, 8}, 10, []int{1, 2}},
		{"fills one week", []float64{4, 3, 3}, 10, []int{1, 1, 1}},
		{"exact fit stays", []float64{5, 5, 1}, 10, []int{1, 1, 2}},
		{"mixed", []float64{8, 8, 15, 8}, 10, []int{1, 2, 3, 4}},
		{"big budget", []float64{15, 15, 8}, 40, []int{1, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSchedule()
			for i, h := range tt.hours {
				var week int
				week, s = s.place(h, tt.budget)
				if week != tt.wantWeeks[i] {
					t.Errorf("module %d (%vh) placed in week %d, want %d", i, h, week, tt.wantWeeks[i])
				}
			}
		})
	}
}

func TestSchedulePlace_DoesNotMutate(t *testing.T) {
	s := schedule{week: 3, filled: 9}
	_, next := s.place(5, 10)
	if s.week != 3 || s.filled != 9 {
		t.Errorf("place() mutated receiver: %+v", s)
	}
	if next.week != 4 || next.filled != 5 {
		t.Errorf("place() next = %+v, want week 4 filled 5", next)
	}
}

func TestSpanWeeks(t *testing.T) {
	tests := []struct {
		hours, budget float64
		want          int
	}{
		{15, 10, 2},
		{8, 10, 1},
		{10, 10, 1},
		{15, 5, 3},
		{0, 10, 1},
	}
	for _, tt := range tests {
		if got := spanWeeks(tt.hours, tt.budget); got != tt.want {
			t.Errorf("spanWeeks(%v, %v) = %d, want %d", tt.hours, tt.budget, got, tt.want)
		}
	}
}
