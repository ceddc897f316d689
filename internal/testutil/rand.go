package testutil

// ScriptedRand replays queued values. An empty int queue yields 0 and an
// empty float queue yields 0.5: every hit lands, no crit, a 50% roll fails.
type ScriptedRand struct {
	Ints   []int
	Floats []float64
}

// IntN returns the next queued int modulo n.
func (r *ScriptedRand) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}

// Float64 returns the next queued float.
func (r *ScriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0.5
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}
