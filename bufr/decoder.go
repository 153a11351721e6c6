package bufr

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/rob-gra/bufr/blog"
)

// Decoder drives the section-by-section, descriptor-by-descriptor decode
// of a BUFR message stream (§4.5; original Rust `decode_bufr_message`).
type Decoder struct {
	tables TableProvider
	cfg    Configuration
	log    blog.Blog
}

// NewDecoder builds a Decoder backed by tables, configured by cfg.
func NewDecoder(tables TableProvider, cfg Configuration) (*Decoder, error) {
	cfg, err := cfg.Valid()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		tables: tables,
		cfg:    cfg,
		log:    blog.New("bufr"),
	}, nil
}

// SetLogProvider lets the caller replace the decoder's log sink.
func (sf *Decoder) SetLogProvider(p blog.LogProvider) {
	sf.log.SetLogProvider(p)
}

// LogMode enables or disables the decoder's log output.
func (sf *Decoder) LogMode(enable bool) {
	sf.log.LogMode(enable)
}

// Message is one fully parsed BUFR message: its section headers plus the
// decoded observations.
type Message struct {
	Section0 Section0
	Section1 Section1
	Section3 Section3
	Output   Output
}

// DecodeMessage reads exactly one BUFR message from r, starting at section
// 0, and returns its decoded form. Returns ErrNotBufr if r is positioned
// at a clean end of input rather than a message (the caller's signal to
// stop looping); the same error is returned when the bytes at r do not
// start with "BUFR" and when section 5 does not read "7777".
func (sf *Decoder) DecodeMessage(r io.Reader) (*Message, error) {
	sec0, err := parseSection0(r)
	if err != nil {
		return nil, err
	}

	sec1, err := parseSection1(r, sec0.Edition)
	if err != nil {
		return nil, err
	}

	if sec1.Sect2Present {
		if _, err := parseSection2(r); err != nil {
			return nil, err
		}
	}

	sec3, err := parseSection3(r)
	if err != nil {
		return nil, err
	}

	sec4, err := parseSection4(r)
	if err != nil {
		return nil, err
	}

	if err := parseSection5(r); err != nil {
		return nil, err
	}

	msg := &Message{Section0: sec0, Section1: sec1, Section3: sec3}

	br := NewBitReader(bytes.NewReader(sec4.Data))
	for subset := 0; subset < max(sec3.NumSubsets, 1); subset++ {
		obs := msg.Output.NewObservation()
		stream := NewDescriptorStream(sec3.Descriptors)
		op := OperatorState{}
		if err := sf.decodeSubset(br, stream, &op, sec1, obs, nil); err != nil {
			return msg, err
		}
	}

	return msg, nil
}

// decodeSubset walks stream to completion, dispatching each descriptor by
// class (§4.5): elements decode a value, replication duplicates the
// following group, operators mutate op, sequences expand in place.
func (sf *Decoder) decodeSubset(br *BitReader, stream *DescriptorStream, op *OperatorState, sec1 Section1, obs *Observation, trail []string) error {
	for !stream.Done() {
		k, _ := stream.Peek()
		switch k.F {
		case ClassElement:
			if op.refRunActive {
				if err := sf.consumeReferenceOperand(br, stream, op); err != nil {
					return err
				}
				continue
			}
			if err := sf.decodeElement(br, stream, op, sec1, obs, trail); err != nil {
				return err
			}
		case ClassOperator:
			stream.Next()
			switch k.X {
			case 1, 2, 3, 8:
			default:
				sf.log.Debug("ignoring unsupported operator descriptor %s", k)
			}
			op.Apply(k)
		case ClassSequence:
			if err := sf.expandSequence(stream, sec1); err != nil {
				return err
			}
		case ClassReplication:
			if err := sf.expandReplication(br, stream, sec1); err != nil {
				return err
			}
		default:
			stream.Next()
		}
	}
	return nil
}

// consumeReferenceOperand reads one reference-value operand for the
// element descriptor at the cursor during an active 2-3-Y run (§4.4): the
// descriptor is consumed but produces no observation, only an override
// recorded against its key.
func (sf *Decoder) consumeReferenceOperand(br *BitReader, stream *DescriptorStream, op *OperatorState) error {
	k, _ := stream.Next()
	raw, err := br.ReadBits(op.refWidth)
	if err != nil {
		return err
	}
	op.SetReference(k, signMagnitude(raw, op.refWidth))
	return nil
}

// decodeElement resolves k against Table B and decodes one value,
// recording it on obs. An unresolvable descriptor is logged and skipped
// without consuming any bits (§8's best-effort policy).
func (sf *Decoder) decodeElement(br *BitReader, stream *DescriptorStream, op *OperatorState, sec1 Section1, obs *Observation, trail []string) error {
	k, _ := stream.Next()

	el, err := sf.tables.Element(sec1.MasterVersion, sec1.Centre, sec1.LocalVersion, k)
	if err != nil {
		sf.log.Warn("skipping unresolved element descriptor %s: %v", k, err)
		return nil
	}

	width := op.EffectiveWidth(el)
	if width == 0 {
		return nil
	}

	raw, err := br.ReadBits(width)
	if err != nil {
		return err
	}

	var descTrail []string
	if sf.cfg.VerboseDescriptors {
		descTrail = append(append([]string(nil), trail...), k.String())
	}

	if el.IsCCITTIA5() {
		obs.AppendText(el, decodeCCITTIA5(raw, width), descTrail)
		return nil
	}

	scale := op.EffectiveScale(el)
	reference := op.EffectiveReference(el)
	numeric := (float64(raw) + float64(reference)) / math.Pow(10, float64(scale))
	obs.Append(el, numeric, descTrail)
	return nil
}

// expandSequence resolves k (a Table D descriptor) and splices its member
// keys into stream in place of itself (§4.6).
func (sf *Decoder) expandSequence(stream *DescriptorStream, sec1 Section1) error {
	k, _ := stream.Peek()
	seq, err := sf.tables.Sequence(sec1.MasterVersion, sec1.Centre, sec1.LocalVersion, k)
	if err != nil {
		sf.log.Warn("skipping unresolved sequence descriptor %s: %v", k, err)
		stream.Next()
		return nil
	}
	stream.ExpandAt(seq.Members)
	return nil
}

// expandReplication implements F=1 replication (§4.7): X is the number of
// descriptors in the replicated group, Y is either a fixed repeat count
// (Y>0) or a signal (Y==0) that the repeat count is read at runtime from
// the following delayed-replication element descriptor.
func (sf *Decoder) expandReplication(br *BitReader, stream *DescriptorStream, sec1 Section1) error {
	k, _ := stream.Next()
	groupLen := int(k.X)

	if k.Y > 0 {
		stream.DuplicateGroup(groupLen, int(k.Y)-1)
		return nil
	}

	countKey, ok := stream.Peek()
	if !ok {
		return fmt.Errorf("bufr: delayed replication %s missing count descriptor: %w", k, ErrUnexpectedEOF)
	}
	el, err := sf.tables.Element(sec1.MasterVersion, sec1.Centre, sec1.LocalVersion, countKey)
	if err != nil {
		return fmt.Errorf("bufr: delayed replication %s count descriptor %s unresolved: %w", k, countKey, ErrUnknownDescriptor)
	}
	raw, err := br.ReadBits(el.Width)
	if err != nil {
		return err
	}
	stream.RemoveAt()
	if raw == 0 {
		for i := 0; i < groupLen; i++ {
			stream.RemoveAt()
		}
		return nil
	}
	stream.DuplicateGroup(groupLen, int(raw)-1)
	return nil
}

// decodeCCITTIA5 reconstructs width bits of raw as big-endian ASCII text,
// stripping leading zero-byte padding.
func decodeCCITTIA5(raw uint32, width uint) string {
	nbytes := (width + 7) / 8
	b := make([]byte, nbytes)
	for i := int(nbytes) - 1; i >= 0; i-- {
		b[i] = byte(raw)
		raw >>= 8
	}
	start := 0
	for start < len(b) && b[start] == 0 {
		start++
	}
	return string(b[start:])
}
