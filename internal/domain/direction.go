package domain

// Direction represents the side of a detected setup (long or short).
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Sign returns +1 for long and -1 for short, for direction-neutral price math.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}
