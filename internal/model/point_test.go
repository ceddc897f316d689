package model

import (
	"math"
	"testing"
)

func TestPoint_DistanceTo(t *testing.T) {
	a := NewPoint(0, 0)
	b := NewPoint(3, 4)

	if got := a.DistanceTo(b); got != 5 {
		t.Errorf("DistanceTo() = %v, want 5", got)
	}
	if got := b.DistanceTo(a); got != 5 {
		t.Errorf("DistanceTo() reversed = %v, want 5", got)
	}
}

func TestPoint_Away(t *testing.T) {
	p := NewPoint(1, 0)
	got := p.Away(NewPoint(0, 0))

	if math.Abs(got.X-2) > 1e-9 || math.Abs(got.Y) > 1e-9 {
		t.Errorf("Away() = %+v, want {2 0}", got)
	}

	same := p.Away(p)
	if same != p {
		t.Errorf("Away(self) = %+v, want %+v", same, p)
	}
}
