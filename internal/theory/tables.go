package theory

// ScaleType selects one of the supported minor scales.
type ScaleType string

const (
	ScaleNatural  ScaleType = "natural"
	ScaleHarmonic ScaleType = "harmonic"
)

// ScaleTypes lists the supported scale types in display order.
var ScaleTypes = []ScaleType{ScaleNatural, ScaleHarmonic}

// Valid reports whether s is a supported scale type.
func (s ScaleType) Valid() bool {
	_, ok := scaleTables[s]
	return ok
}

// Scale spellings are reference data keyed by root pitch class. They encode
// the conventional key signature for each minor key (Eb minor rather than
// D# minor, Bb minor rather than A# minor) and are not computed from
// intervals.
var naturalMinor = [12][7]string{
	{"C", "D", "Eb", "F", "G", "Ab", "Bb"},
	{"C#", "D#", "E", "F#", "G#", "A", "B"},
	{"D", "E", "F", "G", "A", "Bb", "C"},
	{"Eb", "F", "Gb", "Ab", "Bb", "Cb", "Db"},
	{"E", "F#", "G", "A", "B", "C", "D"},
	{"F", "G", "Ab", "Bb", "C", "Db", "Eb"},
	{"F#", "G#", "A", "B", "C#", "D", "E"},
	{"G", "A", "Bb", "C", "D", "Eb", "F"},
	{"G#", "A#", "B", "C#", "D#", "E", "F#"},
	{"A", "B", "C", "D", "E", "F", "G"},
	{"Bb", "C", "Db", "Eb", "F", "Gb", "Ab"},
	{"B", "C#", "D", "E", "F#", "G", "A"},
}

var harmonicMinor = [12][7]string{
	{"C", "D", "Eb", "F", "G", "Ab", "B"},
	{"C#", "D#", "E", "F#", "G#", "A", "B#"},
	{"D", "E", "F", "G", "A", "Bb", "C#"},
	{"Eb", "F", "Gb", "Ab", "Bb", "Cb", "D"},
	{"E", "F#", "G", "A", "B", "C", "D#"},
	{"F", "G", "Ab", "Bb", "C", "Db", "E"},
	{"F#", "G#", "A", "B", "C#", "D", "E#"},
	{"G", "A", "Bb", "C", "D", "Eb", "F#"},
	{"G#", "A#", "B", "C#", "D#", "E", "F##"},
	{"A", "B", "C", "D", "E", "F", "G#"},
	{"Bb", "C", "Db", "Eb", "F", "Gb", "A"},
	{"B", "C#", "D", "E", "F#", "G", "A#"},
}

var scaleTables = map[ScaleType]*[12][7]string{
	ScaleNatural:  &naturalMinor,
	ScaleHarmonic: &harmonicMinor,
}

// standardTunings are ordered low to high.
var standardTunings = map[int][]string{
	4: {"E", "A", "D", "G"},
	5: {"B", "E", "A", "D", "G"},
	6: {"E", "A", "D", "G", "B", "E"},
	7: {"B", "E", "A", "D", "G", "B", "E"},
	8: {"F#", "B", "E", "A", "D", "G", "B", "E"},
}

const (
	MinStrings = 4
	MaxStrings = 8
	// Frets is the number of fretted positions in a diagram (1 through 12).
	Frets = 12
)

// ScaleNotes returns the reference spelling for the root pitch class.
func ScaleNotes(scale ScaleType, root PitchClass) ([]string, error) {
	table, ok := scaleTables[scale]
	if !ok {
		return nil, ErrInvalidScaleType
	}
	idx := int(root)
	if idx < 0 || idx >= len(table) {
		return nil, ErrScaleNotFound
	}
	row := table[idx]
	out := make([]string, len(row))
	copy(out, row[:])
	return out, nil
}

// StandardTuning returns a copy of the registered standard tuning.
func StandardTuning(strings int) (Tuning, bool) {
	t, ok := standardTunings[strings]
	if !ok {
		return nil, false
	}
	out := make(Tuning, len(t))
	copy(out, t)
	return out, true
}

// StringCounts lists the string counts that have a standard tuning, ascending.
func StringCounts() []int {
	out := make([]int, 0, len(standardTunings))
	for n := MinStrings; n <= MaxStrings; n++ {
		if _, ok := standardTunings[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
