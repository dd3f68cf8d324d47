package testkit

// ScriptedSource replays fixed draws in place of a random source. Integer and
// fraction draws come from separate scripts; each wraps around when exhausted.
type ScriptedSource struct {
	Ints   []int
	Floats []float64

	intDraws   int
	floatDraws int
}

// NewScriptedSource creates a scripted source
func NewScriptedSource(ints []int, floats []float64) *ScriptedSource {
	return &ScriptedSource{Ints: ints, Floats: floats}
}

// Intn returns the next scripted integer modulo n
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	if len(s.Ints) == 0 {
		s.intDraws++
		return 0
	}
	v := s.Ints[s.intDraws%len(s.Ints)]
	s.intDraws++
	return ((v % n) + n) % n
}

// Float64 returns the next scripted fraction
func (s *ScriptedSource) Float64() float64 {
	if len(s.Floats) == 0 {
		s.floatDraws++
		return 0
	}
	v := s.Floats[s.floatDraws%len(s.Floats)]
	s.floatDraws++
	return v
}

// IntDraws returns how many integers have been drawn
func (s *ScriptedSource) IntDraws() int { return s.intDraws }

// FloatDraws returns how many fractions have been drawn
func (s *ScriptedSource) FloatDraws() int { return s.floatDraws }
