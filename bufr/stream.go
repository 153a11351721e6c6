package bufr

// DescriptorStream is an in-place expandable list of descriptor keys. Table
// D sequences and replication both work by splicing additional keys into
// the stream at the current cursor position rather than building a
// recursive tree (§4.3).
type DescriptorStream struct {
	keys []Key
	pos  int
}

// NewDescriptorStream builds a stream positioned at the first key.
func NewDescriptorStream(keys []Key) *DescriptorStream {
	return &DescriptorStream{keys: append([]Key(nil), keys...)}
}

// Done reports whether every key has been consumed.
func (sf *DescriptorStream) Done() bool {
	return sf.pos >= len(sf.keys)
}

// Peek returns the current key without advancing. The second return value
// is false if the stream is exhausted.
func (sf *DescriptorStream) Peek() (Key, bool) {
	if sf.Done() {
		return Key{}, false
	}
	return sf.keys[sf.pos], true
}

// Next returns the current key and advances past it.
func (sf *DescriptorStream) Next() (Key, bool) {
	k, ok := sf.Peek()
	if ok {
		sf.pos++
	}
	return k, ok
}

// PeekAt returns the key offset positions ahead of the cursor (0 is the
// same as Peek). Used by replication to look up the following descriptors
// that form its replicated group without consuming them yet.
func (sf *DescriptorStream) PeekAt(offset int) (Key, bool) {
	idx := sf.pos + offset
	if idx < 0 || idx >= len(sf.keys) {
		return Key{}, false
	}
	return sf.keys[idx], true
}

// ExpandAt splices replacement in place of the single key at the cursor,
// leaving the cursor pointing at the first replacement key (or past the
// splice point if replacement is empty). Used for sequence (Table D)
// expansion (§4.6).
func (sf *DescriptorStream) ExpandAt(replacement []Key) {
	tail := append([]Key(nil), sf.keys[sf.pos+1:]...)
	sf.keys = append(sf.keys[:sf.pos], append(append([]Key(nil), replacement...), tail...)...)
}

// DuplicateGroup repeats the group of groupLen keys starting at the cursor
// count additional times immediately after the first occurrence, then
// leaves the cursor unmoved so the (now-repeated) group decodes count+1
// times total. Used for fixed and delayed replication (§4.7).
func (sf *DescriptorStream) DuplicateGroup(groupLen, count int) {
	if count <= 0 || groupLen <= 0 {
		return
	}
	group := append([]Key(nil), sf.keys[sf.pos:sf.pos+groupLen]...)
	var extra []Key
	for i := 0; i < count; i++ {
		extra = append(extra, group...)
	}
	tail := append([]Key(nil), sf.keys[sf.pos+groupLen:]...)
	sf.keys = append(sf.keys[:sf.pos+groupLen], append(extra, tail...)...)
}

// RemoveAt deletes the single key at the cursor without advancing,
// used to drop a delayed-replication count descriptor once consumed.
func (sf *DescriptorStream) RemoveAt() {
	if sf.Done() {
		return
	}
	sf.keys = append(sf.keys[:sf.pos], sf.keys[sf.pos+1:]...)
}
