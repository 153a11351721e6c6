package bufr

import (
	"encoding/binary"
	"errors"
	"io"
)

// Section0 is the fixed 8-byte message header (§4.9).
type Section0 struct {
	Length  uint32 // total message length in bytes, including this header
	Edition uint8
}

func parseSection0(r io.Reader) (Section0, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Section0{}, ErrNotBufr
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Section0{}, ErrUnexpectedEOF
		}
		return Section0{}, err
	}
	if string(magic[:]) != "BUFR" {
		return Section0{}, ErrNotBufr
	}

	var rest [4]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return Section0{}, ErrUnexpectedEOF
	}
	length := uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2])
	edition := rest[3]
	if edition != 2 && edition != 4 {
		// Skip the rest of the message so r is left at the next one.
		if length > 8 {
			if _, err := io.CopyN(io.Discard, r, int64(length)-8); err != nil {
				return Section0{}, ErrUnexpectedEOF
			}
		}
		return Section0{Length: length, Edition: edition}, ErrUnsupportedEdition
	}
	return Section0{Length: length, Edition: edition}, nil
}

// Section1 is the identification section. Its layout differs between
// Edition 2 and Edition 4; both are normalized into this one struct
// (§4.9; original Rust `section1_v2`/`section1_v4`).
type Section1 struct {
	Length          uint32
	MasterTable     uint8
	Centre          int
	SubCentre       int
	UpdateSequence  uint8
	Sect2Present    bool
	DataCategory    uint8
	DataSubCategory uint8
	MasterVersion   int
	LocalVersion    int
	Year, Month, Day    int
	Hour, Minute, Second int
}

func parseSection1(r io.Reader, edition uint8) (Section1, error) {
	if edition == 4 {
		return parseSection1v4(r)
	}
	return parseSection1v2(r)
}

func readSectionLength(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// parseSection1v2 follows the 17-byte-minimum Edition 2 layout (original
// Rust `section1_v2`): length(3) masterTable(1) centre(1) subCentre(1)
// updateSeq(1) flags(1) dataCategory(1) dataSubCategory(1)
// masterVersion(1) localVersion(1) year(1) month(1) day(1) hour(1)
// minute(1), then reserved padding out to Length.
func parseSection1v2(r io.Reader) (Section1, error) {
	head := make([]byte, 17)
	if _, err := io.ReadFull(r, head); err != nil {
		return Section1{}, ErrUnexpectedEOF
	}
	s := Section1{
		Length:          readSectionLength(head[0:3]),
		MasterTable:     head[3],
		Centre:          int(head[4]),
		SubCentre:       int(head[5]),
		UpdateSequence:  head[6],
		Sect2Present:    head[7]&0x80 != 0,
		DataCategory:    head[8],
		DataSubCategory: head[9],
		MasterVersion:   int(head[10]),
		LocalVersion:    int(head[11]),
		Year:            int(head[12]),
		Month:           int(head[13]),
		Day:             int(head[14]),
		Hour:            int(head[15]),
		Minute:          int(head[16]),
	}
	if err := skipRemainder(r, s.Length, 17); err != nil {
		return Section1{}, err
	}
	return s, nil
}

// parseSection1v4 follows the 22-byte-minimum Edition 4 layout (original
// Rust `section1_v4`): same fields plus a two-octet centre/subCentre and a
// trailing seconds field. Whether the sect2 flag lives in the same byte
// position as Edition 2 is ambiguous in the source; treated identically
// here (see DESIGN.md).
func parseSection1v4(r io.Reader) (Section1, error) {
	head := make([]byte, 22)
	if _, err := io.ReadFull(r, head); err != nil {
		return Section1{}, ErrUnexpectedEOF
	}
	s := Section1{
		Length:          readSectionLength(head[0:3]),
		MasterTable:     head[3],
		Centre:          int(binary.BigEndian.Uint16(head[4:6])),
		SubCentre:       int(binary.BigEndian.Uint16(head[6:8])),
		UpdateSequence:  head[8],
		Sect2Present:    head[9]&0x80 != 0,
		DataCategory:    head[10],
		DataSubCategory: head[11],
		MasterVersion:   int(head[13]),
		LocalVersion:    int(head[14]),
		Year:            int(binary.BigEndian.Uint16(head[15:17])),
		Month:           int(head[17]),
		Day:             int(head[18]),
		Hour:            int(head[19]),
		Minute:          int(head[20]),
		Second:          int(head[21]),
	}
	if err := skipRemainder(r, s.Length, 22); err != nil {
		return Section1{}, err
	}
	return s, nil
}

func skipRemainder(r io.Reader, sectionLength uint32, consumed int) error {
	remaining := int64(sectionLength) - int64(consumed)
	if remaining <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, remaining); err != nil {
		return ErrUnexpectedEOF
	}
	return nil
}

// Section2 is the optional, centre-defined local-use section. Its contents
// are opaque; the decoder only needs its length to skip past it.
type Section2 struct {
	Length uint32
	Raw    []byte
}

func parseSection2(r io.Reader) (Section2, error) {
	lenBuf := make([]byte, 3)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return Section2{}, ErrUnexpectedEOF
	}
	length := readSectionLength(lenBuf)
	if length < 3 {
		return Section2{}, ErrUnexpectedEOF
	}
	raw := make([]byte, length-3)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Section2{}, ErrUnexpectedEOF
	}
	return Section2{Length: length, Raw: raw}, nil
}

// Section3 is the data description section: the subset count, the
// observed/compressed flags, and the ordered descriptor list that drives
// decoding.
type Section3 struct {
	Length          uint32
	NumSubsets      int
	Observed        bool
	Compressed      bool
	Descriptors     []Key
}

func parseSection3(r io.Reader) (Section3, error) {
	head := make([]byte, 7)
	if _, err := io.ReadFull(r, head); err != nil {
		return Section3{}, ErrUnexpectedEOF
	}
	length := readSectionLength(head[0:3])
	numSubsets := int(binary.BigEndian.Uint16(head[4:6]))
	flags := head[6]

	descBytes := int(length) - 7
	if descBytes < 0 || descBytes%2 != 0 {
		return Section3{}, ErrUnexpectedEOF
	}
	raw := make([]byte, descBytes)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Section3{}, ErrUnexpectedEOF
	}

	descriptors := make([]Key, 0, descBytes/2)
	for i := 0; i+1 < len(raw); i += 2 {
		descriptors = append(descriptors, parseDescriptorBytes(raw[i], raw[i+1]))
	}

	return Section3{
		Length:      length,
		NumSubsets:  numSubsets,
		Observed:    flags&0x80 != 0,
		Compressed:  flags&0x40 != 0,
		Descriptors: descriptors,
	}, nil
}

// parseDescriptorBytes decodes a two-byte descriptor: the class lives in
// the top two bits of the first byte, X in the low six, Y is the whole
// second byte (original Rust `bytes_desc`).
func parseDescriptorBytes(b1, b2 byte) Key {
	class, x := byteToClassAndX(b1)
	return Key{F: class, X: x, Y: b2}
}

// Section4 carries the raw, bit-packed data payload. Decoding happens by
// wrapping Data in a BitReader.
type Section4 struct {
	Length uint32
	Data   []byte
}

func parseSection4(r io.Reader) (Section4, error) {
	lenBuf := make([]byte, 3)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return Section4{}, ErrUnexpectedEOF
	}
	length := readSectionLength(lenBuf)
	if length < 4 {
		return Section4{}, ErrUnexpectedEOF
	}
	// One reserved octet follows the length before the payload proper.
	if _, err := io.CopyN(io.Discard, r, 1); err != nil {
		return Section4{}, ErrUnexpectedEOF
	}
	data := make([]byte, length-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return Section4{}, ErrUnexpectedEOF
	}
	return Section4{Length: length, Data: data}, nil
}

// parseSection5 consumes and validates the closing "7777" marker.
func parseSection5(r io.Reader) error {
	var end [4]byte
	if _, err := io.ReadFull(r, end[:]); err != nil {
		return ErrUnexpectedEOF
	}
	if string(end[:]) != "7777" {
		return ErrNotBufr
	}
	return nil
}
