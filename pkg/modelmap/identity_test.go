package modelmap

import "testing"

func TestSameInstance(t *testing.T) {
	type account struct{ ID int }

	a := &account{ID: 1}
	b := &account{ID: 1}
	attrs := map[string]any{"k": 1}
	list := []int{1, 2, 3}
	ch := make(chan int)

	cases := []struct {
		name string
		x, y any
		want bool
	}{
		{"same pointer", a, a, true},
		{"equal pointers", a, b, false},
		{"both nil", nil, nil, true},
		{"nil and pointer", nil, a, false},
		{"typed nil and nil", (*account)(nil), nil, false},
		{"same map", attrs, attrs, true},
		{"distinct maps", attrs, map[string]any{"k": 1}, false},
		{"same slice", list, list, true},
		{"resliced", list, list[:2], false},
		{"empty reslices share base", list[:0], list[:0:0], true},
		{"same chan", ch, ch, true},
		{"struct copies", account{ID: 1}, account{ID: 1}, false},
		{"strings", "ana", "ana", false},
		{"different types", a, attrs, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SameInstance(tc.x, tc.y); got != tc.want {
				t.Fatalf("SameInstance(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}
