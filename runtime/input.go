package runtime

// Input is the byte buffer a parse runs over (spec.md §6). It is a plain
// slice accessor, not a stream: the interpreter seeks position back and
// forth freely (choice rewind, lookahead), which rules out a Reader-style
// interface.
type Input interface {
	Len() int
	At(pos int) byte
}

// ByteSliceInput is the straightforward Input over an in-memory buffer.
type ByteSliceInput struct {
	data []byte
}

// NewByteSliceInput wraps data as an Input. data is not copied; callers
// must not mutate it while a parse is in flight.
func NewByteSliceInput(data []byte) *ByteSliceInput {
	return &ByteSliceInput{data: data}
}

func (b *ByteSliceInput) Len() int { return len(b.data) }

func (b *ByteSliceInput) At(pos int) byte { return b.data[pos] }
