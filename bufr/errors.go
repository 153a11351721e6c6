package bufr

import "errors"

// Sentinel errors returned by the decoding engine. See SPEC_FULL.md §8.
var (
	// ErrUnexpectedEOF is returned when the bit reader runs out of input
	// mid-read. Fatal for the message in progress.
	ErrUnexpectedEOF = errors.New("bufr: unexpected end of stream")

	// ErrNotBufr is returned when the input ends cleanly where a message
	// would start, when section 0's magic bytes do not read "BUFR", and
	// when section 5 does not read "7777". The three cases are not
	// told apart; the bufrdecode command stops reading a file at the
	// first ErrNotBufr without reporting an error.
	ErrNotBufr = errors.New("bufr: missing BUFR magic")

	// ErrUnsupportedEdition is returned for any edition other than 2 or 4.
	ErrUnsupportedEdition = errors.New("bufr: unsupported edition")

	// ErrMissingTable is surfaced by a TableProvider when a table file
	// could not be found. Non-fatal: the caller treats the table as
	// empty and continues.
	ErrMissingTable = errors.New("bufr: table file not found")

	// ErrUnknownDescriptor marks a descriptor key absent from every
	// resolvable table. The decoder logs and skips it without reading
	// any bits.
	ErrUnknownDescriptor = errors.New("bufr: unknown descriptor")

	// ErrMalformedTableRow marks a single table row that failed to
	// parse. The row is skipped; loading continues.
	ErrMalformedTableRow = errors.New("bufr: malformed table row")

	// ErrInvalidConfig names an invalid Configuration. Configuration.Valid
	// never fails, so no function in this package returns it.
	ErrInvalidConfig = errors.New("bufr: invalid configuration")
)
