package conn

// buffer holds received bytes that have not been consumed yet. The unread
// region is data[start:end].
type buffer struct {
	data  []byte
	start int
	end   int
}

func newBuffer(size int) *buffer {
	return &buffer{data: make([]byte, size)}
}

func (b *buffer) unread() []byte { return b.data[b.start:b.end] }

func (b *buffer) len() int { return b.end - b.start }

// free returns the writable tail of the buffer.
func (b *buffer) free() []byte { return b.data[b.end:] }

func (b *buffer) commit(n int) { b.end += n }

func (b *buffer) consume(n int) {
	b.start += n
	if b.start == b.end {
		b.start, b.end = 0, 0
	}
}

// compact moves the unread bytes to the front of the buffer.
func (b *buffer) compact() {
	if b.start == 0 {
		return
	}
	n := copy(b.data, b.data[b.start:b.end])
	b.start, b.end = 0, n
}

// reserve makes room for at least n more bytes after end, compacting first
// and growing to twice the capacity plus n when that is not enough. Growth
// copies; slices taken before the call must not be used afterwards.
func (b *buffer) reserve(n int) {
	if len(b.data)-b.end >= n {
		return
	}
	b.compact()
	if len(b.data)-b.end >= n {
		return
	}
	data := make([]byte, len(b.data)*2+n)
	copy(data, b.data[:b.end])
	b.data = data
}
