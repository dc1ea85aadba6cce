package progression

import (
	"reflect"
	"testing"
)

func TestUnlocked(t *testing.T) {
	tests := []struct {
		name       string
		discovered []int
		scores     map[int]float64
		want       []int
	}{
		{
			name:       "empty milestone",
			discovered: nil,
			scores:     nil,
			want:       nil,
		},
		{
			name:       "first is always unlocked",
			discovered: []int{1, 2, 3},
			scores:     nil,
			want:       []int{1},
		},
		{
			name:       "perfect score unlocks successor",
			discovered: []int{1, 2, 3},
			scores:     map[int]float64{1: 100},
			want:       []int{1, 2},
		},
		{
			name:       "chain of perfect scores",
			discovered: []int{1, 2, 3},
			scores:     map[int]float64{1: 100, 2: 100},
			want:       []int{1, 2, 3},
		},
		{
			name:       "near-perfect score does not unlock",
			discovered: []int{1, 2},
			scores:     map[int]float64{1: 99.99},
			want:       []int{1},
		},
		{
			name:       "gap in ids blocks the scan",
			discovered: []int{1, 3, 4},
			scores:     map[int]float64{1: 100, 3: 100},
			want:       []int{1},
		},
		{
			name:       "scan stops at first locked id",
			discovered: []int{1, 2, 3, 4},
			scores:     map[int]float64{1: 100, 3: 100},
			want:       []int{1, 2},
		},
		{
			name:       "first id need not be one",
			discovered: []int{5, 6},
			scores:     map[int]float64{5: 100},
			want:       []int{5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unlocked(tt.discovered, tt.scores)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnlockedIsPrefixOfDiscovered(t *testing.T) {
	discovered := []int{1, 2, 3, 4, 5}
	scores := map[int]float64{1: 100, 2: 100, 3: 50, 4: 100}

	got := Unlocked(discovered, scores)
	if len(got) > len(discovered) {
		t.Fatalf("unlocked longer than discovered: %v", got)
	}
	for i, id := range got {
		if id != discovered[i] {
			t.Errorf("unlocked[%d] = %d, want %d", i, id, discovered[i])
		}
	}
}

func TestRepairSelection(t *testing.T) {
	tests := []struct {
		name       string
		previous   int
		unlocked   []int
		discovered []int
		want       int
	}{
		{
			name:       "keep still-unlocked selection",
			previous:   2,
			unlocked:   []int{1, 2, 3},
			discovered: []int{1, 2, 3},
			want:       2,
		},
		{
			name:       "stale selection snaps to the frontier",
			previous:   3,
			unlocked:   []int{1, 2},
			discovered: []int{1, 2, 3},
			want:       2,
		},
		{
			name:       "selection far past the frontier",
			previous:   9,
			unlocked:   []int{1, 2, 3},
			discovered: []int{1, 2, 3, 4, 5},
			want:       3,
		},
		{
			name:       "fall back to first discovered",
			previous:   1,
			unlocked:   nil,
			discovered: []int{4, 5},
			want:       4,
		},
		{
			name:       "nothing discovered",
			previous:   1,
			unlocked:   nil,
			discovered: nil,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairSelection(tt.previous, tt.unlocked, tt.discovered)
			if got != tt.want {
				t.Errorf("RepairSelection() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextAfter(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		unlocked []int
		wantNext int
		wantOK   bool
	}{
		{"middle of the prefix", 1, []int{1, 2, 3}, 2, true},
		{"last unlocked", 3, []int{1, 2, 3}, 0, false},
		{"current not unlocked", 4, []int{1, 2, 3}, 0, false},
		{"empty prefix", 1, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextAfter(tt.current, tt.unlocked)
			if next != tt.wantNext || ok != tt.wantOK {
				t.Errorf("NextAfter() = (%d, %v), want (%d, %v)", next, ok, tt.wantNext, tt.wantOK)
			}
		})
	}
}
