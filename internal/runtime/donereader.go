package runtime

import (
	"io"
	"sync"
)

// Wraps an [io.Reader] and signals when it has been fully drained.
//
// The done channel is closed exactly once, on the first [io.EOF] from the
// underlying reader, so it is safe to wait on from multiple goroutines.
// Non-EOF errors pass through without closing the channel.
type doneReader struct {
	r    io.Reader
	once sync.Once
	done chan struct{}
}

// Creates a [doneReader] wrapping the given reader.
func newDoneReader(r io.Reader) *doneReader {
	return &doneReader{r: r, done: make(chan struct{})}
}

func (d *doneReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err == io.EOF {
		d.once.Do(func() { close(d.done) })
	}
	return n, err
}
