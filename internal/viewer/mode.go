package viewer

// Mode holds the three presentation flags.
type Mode struct {
	Wireframe   bool
	Transparent bool
	Shaded      bool
}

// DefaultMode returns the startup presentation: lit surfaces, fully
// opaque, no wireframe overlay. A freshly loaded object matches it.
func DefaultMode() Mode {
	return Mode{Shaded: true}
}
