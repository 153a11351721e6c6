package bufr

// OperatorState tracks the cumulative effect of Table C operator
// descriptors on subsequent element decoding (§4.4). It is reset to its
// zero value at the start of every data subset; within a subset it persists
// across elements until a terminating or overriding operator is seen.
type OperatorState struct {
	// WidthPlus is added to an element's declared bit width (operator 2-1-Y:
	// Y-128 bits added, Y==0 cancels).
	WidthPlus int32

	// ScalePlus is added to an element's declared scale (operator 2-2-Y:
	// Y-128 added, Y==0 cancels).
	ScalePlus int32

	// refRunActive is true between a 2-3-Y operator (0 < Y < 255) and its
	// terminating 2-3-255. While active, every element descriptor that
	// follows is consumed as a reference-value operand instead of being
	// decoded as data (§4.4).
	refRunActive bool
	// refWidth is the bit width of each reference operand read while
	// refRunActive is true (Y from the 2-3-Y operator that opened the run).
	refWidth uint
	// newRef holds, per element key, the reference value read during a
	// 2-3-Y run. Entries persist after the run's 2-3-255 terminator: only
	// the reading of further operands stops, not the override itself.
	newRef map[Key]int32

	// newWidthActive is true while a 2-8-Y width override is in effect.
	newWidthActive bool
	// newWidth, in bytes*8 (i.e. already in bits), replaces an element's
	// declared width while newWidthActive is true; WidthPlus is still
	// added on top of it.
	newWidth uint
}

// Apply mutates sf according to the Table C operator k. Unrecognized
// operator codes leave sf unchanged.
func (sf *OperatorState) Apply(k Key) {
	switch k.X {
	case 1: // width modulation
		if k.Y == 0 {
			sf.WidthPlus = 0
		} else {
			sf.WidthPlus = int32(k.Y) - 128
		}
	case 2: // scale modulation
		if k.Y == 0 {
			sf.ScalePlus = 0
		} else {
			sf.ScalePlus = int32(k.Y) - 128
		}
	case 3: // reference value override run
		if k.Y == 255 {
			sf.refRunActive = false
			sf.refWidth = 0
			return
		}
		if k.Y == 0 { // cancel every recorded override
			sf.refRunActive = false
			sf.refWidth = 0
			sf.newRef = nil
			return
		}
		sf.refRunActive = true
		sf.refWidth = uint(k.Y)
	case 8: // CCITT IA5 width override, in bytes
		if k.Y == 0 {
			sf.newWidthActive = false
			sf.newWidth = 0
		} else {
			sf.newWidthActive = true
			sf.newWidth = uint(k.Y) * 8
		}
	}
}

// SetReference records the reference-value override read for k during an
// active 2-3-Y run.
func (sf *OperatorState) SetReference(k Key, v int32) {
	if sf.newRef == nil {
		sf.newRef = make(map[Key]int32)
	}
	sf.newRef[k] = v
}

// EffectiveWidth returns the bit width to use for decoding el under the
// current operator state.
func (sf *OperatorState) EffectiveWidth(el ElementDescriptor) uint {
	base := int32(el.Width)
	if sf.newWidthActive {
		base = int32(sf.newWidth)
	}
	w := base + sf.WidthPlus
	if w < 0 {
		w = 0
	}
	return uint(w)
}

// EffectiveScale returns the scale to use for decoding el under the
// current operator state.
func (sf *OperatorState) EffectiveScale(el ElementDescriptor) int32 {
	return el.Scale + sf.ScalePlus
}

// EffectiveReference returns the reference value to use for decoding el
// under the current operator state: the Table B reference plus any
// override recorded for el's key.
func (sf *OperatorState) EffectiveReference(el ElementDescriptor) int32 {
	if v, ok := sf.newRef[el.Key]; ok {
		return el.Reference + v
	}
	return el.Reference
}

// signMagnitude interprets raw as a width-bit sign-magnitude integer: the
// top bit is the sign (1 means negative), the remaining bits the
// magnitude. This is the encoding Table C reference-value overrides use.
func signMagnitude(raw uint32, width uint) int32 {
	if width == 0 {
		return 0
	}
	signBit := uint32(1) << (width - 1)
	mag := int32(raw &^ signBit)
	if raw&signBit != 0 {
		return -mag
	}
	return mag
}
