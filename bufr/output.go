package bufr

// Value holds one decoded element: either a reconstructed numeric value or,
// for CCITT IA5 elements, the raw decoded text (§3, Observation bundle).
type Value struct {
	Key         Key
	Name        string
	Unit        string
	Numeric     float64
	Text        string
	IsText      bool
	Descriptors []string // human-readable descriptor trail, verbose mode only
}

// Observation is one decoded data subset: the ordered list of element
// values produced by walking a message's descriptor stream once.
type Observation struct {
	Values []Value
}

// Output collects decoded observations across a message. The zero value is
// ready to use.
type Output struct {
	Observations []Observation
}

// NewObservation starts a new, empty Observation and returns a pointer the
// caller appends values to directly.
func (sf *Output) NewObservation() *Observation {
	sf.Observations = append(sf.Observations, Observation{})
	return &sf.Observations[len(sf.Observations)-1]
}

// Append records one decoded numeric value.
func (sf *Observation) Append(el ElementDescriptor, numeric float64, trail []string) {
	sf.Values = append(sf.Values, Value{
		Key:         el.Key,
		Name:        el.Name,
		Unit:        el.Unit,
		Numeric:     numeric,
		Descriptors: trail,
	})
}

// AppendText records one decoded CCITT IA5 value.
func (sf *Observation) AppendText(el ElementDescriptor, text string, trail []string) {
	sf.Values = append(sf.Values, Value{
		Key:         el.Key,
		Name:        el.Name,
		Unit:        el.Unit,
		Text:        text,
		IsText:      true,
		Descriptors: trail,
	})
}
