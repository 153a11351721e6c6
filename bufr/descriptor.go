package bufr

import "fmt"

// Class is the descriptor's F value, selecting which table governs it.
// See SPEC_FULL.md §3.
type Class uint8

// The four descriptor classes.
const (
	ClassElement     Class = 0 // Table B
	ClassReplication Class = 1
	ClassOperator    Class = 2 // Table C
	ClassSequence    Class = 3 // Table D
)

func (sf Class) String() string {
	switch sf {
	case ClassElement:
		return "element"
	case ClassReplication:
		return "replication"
	case ClassOperator:
		return "operator"
	case ClassSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Key is a descriptor triple (F, X, Y). F selects the class (element,
// replication, operator, sequence); X and Y are class-specific. Keys are
// compared by value and are safe to use as map keys.
type Key struct {
	F Class
	X uint8
	Y uint8
}

// NewKey builds a Key from its three fields.
func NewKey(f Class, x, y uint8) Key {
	return Key{F: f, X: x, Y: y}
}

// String renders the canonical "F-X-Y" form used throughout SPEC_FULL.md.
func (sf Key) String() string {
	return fmt.Sprintf("%d-%d-%d", sf.F, sf.X, sf.Y)
}

// referenceTerminator is the Table C terminator that ends a reference-value
// change run (§4.4).
var referenceTerminator = Key{F: ClassOperator, X: 3, Y: 255}

// byteToClassAndX decodes one descriptor byte into its class and X nibble:
// the top two bits select the class (0..3), the low six bits are X.
//
//	0-63:    class 0 (element),      X = b
//	64-127:  class 1 (replication),  X = b-64
//	128-191: class 2 (operator),     X = b-128
//	192-255: class 3 (sequence),     X = b-192
func byteToClassAndX(b byte) (Class, uint8) {
	return Class(b >> 6), b & 0x3f
}
