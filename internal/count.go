package internal

import (
	"io"
	"sync/atomic"
)

type Counter int64

func (r *Counter) Increment(n int64) int64 {
	return atomic.AddInt64((*int64)(r), n)
}

func (r *Counter) Get() int64 {
	return atomic.LoadInt64((*int64)(r))
}

// CountingReader adds every byte read from the wrapped reader to a Counter.
type CountingReader struct {
	r     io.Reader
	count *Counter
}

func NewCountingReader(r io.Reader, c *Counter) *CountingReader {
	return &CountingReader{r: r, count: c}
}

func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.count.Increment(int64(n))
	return n, err
}
