package bufr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProvider is an in-memory TableProvider test double; every scenario
// below uses version triple (0, 0, 0).
type memProvider struct {
	elems map[Key]ElementDescriptor
	seqs  map[Key]SequenceDescriptor
}

func newMemProvider() *memProvider {
	return &memProvider{
		elems: map[Key]ElementDescriptor{
			{F: ClassElement, X: 0, Y: 1}: {
				Key: Key{F: ClassElement, X: 0, Y: 1}, Name: "Table A: entry",
				Unit: "CCITT IA5", Scale: 0, Reference: 0, Width: 24,
			},
			{F: ClassElement, X: 1, Y: 1}: {
				Key: Key{F: ClassElement, X: 1, Y: 1}, Name: "Some length",
				Unit: "m", Scale: 0, Reference: 0, Width: 8,
			},
			{F: ClassElement, X: 1, Y: 2}: {
				Key: Key{F: ClassElement, X: 1, Y: 2}, Name: "Some other length",
				Unit: "m", Scale: 1, Reference: 0, Width: 8,
			},
			{F: ClassElement, X: 31, Y: 1}: {
				Key: Key{F: ClassElement, X: 31, Y: 1}, Name: "Delayed replication factor",
				Unit: "NUMERIC", Scale: 0, Reference: 0, Width: 8,
			},
		},
		seqs: map[Key]SequenceDescriptor{
			{F: ClassSequence, X: 1, Y: 1}: {
				Key:  Key{F: ClassSequence, X: 1, Y: 1},
				Name: "Length pair",
				Members: []Key{
					{F: ClassElement, X: 1, Y: 1},
					{F: ClassElement, X: 1, Y: 2},
				},
			},
		},
	}
}

func (sf *memProvider) Element(_, _, _ int, k Key) (ElementDescriptor, error) {
	el, ok := sf.elems[k]
	if !ok {
		return ElementDescriptor{}, ErrUnknownDescriptor
	}
	return el, nil
}

func (sf *memProvider) Sequence(_, _, _ int, k Key) (SequenceDescriptor, error) {
	seq, ok := sf.seqs[k]
	if !ok {
		return SequenceDescriptor{}, ErrUnknownDescriptor
	}
	return seq, nil
}

// buildMessage assembles a complete BUFR message byte stream from its
// parts, computing each section's length prefix automatically.
func buildMessage(t *testing.T, descriptors []Key, flags3 byte, numSubsets uint16, data4 []byte) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("BUFR")
	buf.Write([]byte{0, 0, 0, 2}) // length placeholder, edition 2

	sec1 := []byte{
		0, 0, 17, // length
		0,    // master table
		0,    // centre
		0,    // subcentre
		0,    // update sequence
		0,    // flags (no section 2)
		0, 0, // data category / subcategory
		0, 0, // master version, local version
		0, 0, 0, 0, 0, // year month day hour minute
	}
	buf.Write(sec1)

	var descBuf bytes.Buffer
	for _, k := range descriptors {
		descBuf.WriteByte(byte(k.F)<<6 | k.X)
		descBuf.WriteByte(k.Y)
	}
	sec3Len := 7 + descBuf.Len()
	buf.Write([]byte{byte(sec3Len >> 16), byte(sec3Len >> 8), byte(sec3Len)})
	buf.WriteByte(0) // reserved
	buf.Write([]byte{byte(numSubsets >> 8), byte(numSubsets)})
	buf.WriteByte(flags3)
	buf.Write(descBuf.Bytes())

	sec4Len := 4 + len(data4)
	buf.Write([]byte{byte(sec4Len >> 16), byte(sec4Len >> 8), byte(sec4Len)})
	buf.WriteByte(0) // reserved
	buf.Write(data4)

	buf.WriteString("7777")
	return buf.Bytes()
}

// S1: a single CCITT IA5 element decodes to raw text.
func TestScenarioCCITTIA5(t *testing.T) {
	msg := buildMessage(t,
		[]Key{{F: ClassElement, X: 0, Y: 1}},
		0, 1,
		[]byte("ABC"),
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations, 1)
	require.Len(t, m.Output.Observations[0].Values, 1)

	v := m.Output.Observations[0].Values[0]
	assert.True(t, v.IsText)
	assert.Equal(t, "ABC", v.Text)
}

// S2: a width operator narrows an element's effective width.
func TestScenarioWidthOperator(t *testing.T) {
	msg := buildMessage(t,
		[]Key{
			{F: ClassOperator, X: 1, Y: 124}, // width -4, so 8-bit element reads as 4 bits
			{F: ClassElement, X: 1, Y: 1},
		},
		0, 1,
		[]byte{0b10110000},
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	v := m.Output.Observations[0].Values[0]
	assert.Equal(t, float64(0b1011), v.Numeric)
}

// S3: a 2-3-Y run consumes the following element descriptor(s) as
// reference-value operands (emitting no observation) until terminated by
// 2-3-255; only the element descriptor outside the run decodes data,
// using the override recorded for its key.
func TestScenarioReferenceOverride(t *testing.T) {
	msg := buildMessage(t,
		[]Key{
			{F: ClassOperator, X: 3, Y: 8}, // open an 8-bit-operand run
			{F: ClassElement, X: 1, Y: 1},  // consumed as the reference operand
			{F: ClassOperator, X: 3, Y: 255}, // close the run
			{F: ClassElement, X: 1, Y: 1},  // decoded as data, using the override
		},
		0, 1,
		[]byte{0x80, 0xFF}, // operand = sign-magnitude 0x80 -> 0; data = 255
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations[0].Values, 1)
	v := m.Output.Observations[0].Values[0]
	assert.Equal(t, float64(255), v.Numeric) // 255 + reference(0), scale 0
}

// S4: a Table D sequence expands into its member elements.
func TestScenarioSequenceExpansion(t *testing.T) {
	msg := buildMessage(t,
		[]Key{{F: ClassSequence, X: 1, Y: 1}},
		0, 1,
		[]byte{10, 20},
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations[0].Values, 2)
	assert.Equal(t, float64(10), m.Output.Observations[0].Values[0].Numeric)
	assert.Equal(t, float64(2), m.Output.Observations[0].Values[1].Numeric) // 20 scaled by 10^-1
}

// S5: an unknown descriptor is skipped without consuming any bits, so
// decoding of the remaining stream still succeeds.
func TestScenarioUnknownDescriptorSkipped(t *testing.T) {
	msg := buildMessage(t,
		[]Key{
			{F: ClassElement, X: 63, Y: 99},
			{F: ClassElement, X: 1, Y: 1},
		},
		0, 1,
		[]byte{42},
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations[0].Values, 1)
	assert.Equal(t, float64(42), m.Output.Observations[0].Values[0].Numeric)
}

// S6: a message truncated mid-section surfaces ErrUnexpectedEOF.
func TestScenarioTruncatedInput(t *testing.T) {
	msg := buildMessage(t,
		[]Key{{F: ClassElement, X: 1, Y: 1}},
		0, 1,
		[]byte{1},
	)
	truncated := msg[:len(msg)-6] // cut off before section 4's payload

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	_, err = dec.DecodeMessage(bytes.NewReader(truncated))
	assert.True(t, errors.Is(err, ErrUnexpectedEOF))
}

// Fixed replication: X-Y repeats the following X descriptors Y times.
func TestPropertyFixedReplication(t *testing.T) {
	msg := buildMessage(t,
		[]Key{
			{F: ClassReplication, X: 1, Y: 3},
			{F: ClassElement, X: 1, Y: 1},
		},
		0, 1,
		[]byte{1, 2, 3},
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations[0].Values, 3)
	assert.Equal(t, float64(1), m.Output.Observations[0].Values[0].Numeric)
	assert.Equal(t, float64(2), m.Output.Observations[0].Values[1].Numeric)
	assert.Equal(t, float64(3), m.Output.Observations[0].Values[2].Numeric)
}

// Delayed replication: Y=0 means the repeat count is read at runtime from
// the following element descriptor.
func TestPropertyDelayedReplication(t *testing.T) {
	msg := buildMessage(t,
		[]Key{
			{F: ClassReplication, X: 1, Y: 0},
			{F: ClassElement, X: 31, Y: 1},
			{F: ClassElement, X: 1, Y: 1},
		},
		0, 1,
		[]byte{2, 7, 8}, // count=2, then two element values
	)

	dec, err := NewDecoder(newMemProvider(), DefaultConfig())
	require.NoError(t, err)

	m, err := dec.DecodeMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	require.Len(t, m.Output.Observations[0].Values, 2)
	assert.Equal(t, float64(7), m.Output.Observations[0].Values[0].Numeric)
	assert.Equal(t, float64(8), m.Output.Observations[0].Values[1].Numeric)
}
