package serializer

import (
	"bytes"
	"sync"
)

// StreamFactory hands out reusable buffers. Buffers passed to Put must not be used afterwards.
type StreamFactory interface {
	Get() *bytes.Buffer
	Put(*bytes.Buffer)
}

// maxPooledBuffer keeps oversized buffers out of the pool.
const maxPooledBuffer = 1 << 20

// PooledStreamFactory is a [StreamFactory] backed by a [sync.Pool].
type PooledStreamFactory struct {
	pool sync.Pool
}

// NewPooledStreamFactory creates a [PooledStreamFactory].
func NewPooledStreamFactory() *PooledStreamFactory {
	return &PooledStreamFactory{
		pool: sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
}

// Get returns an empty buffer.
func (f *PooledStreamFactory) Get() *bytes.Buffer {
	buf := f.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool.
func (f *PooledStreamFactory) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	f.pool.Put(buf)
}
