package field

// DoubleBuffer pairs a readable buffer with a writable one of identical size.
// Passes read from Read and write to Write; Swap exchanges the two without
// copying data.
type DoubleBuffer[T Buffer] struct {
	read  T
	write T
}

// NewDoubleBuffer wraps two equally sized buffers.
func NewDoubleBuffer[T Buffer](read, write T) *DoubleBuffer[T] {
	return &DoubleBuffer[T]{read: read, write: write}
}

// Read returns the buffer holding the current state.
func (d *DoubleBuffer[T]) Read() T { return d.read }

// Write returns the buffer the next pass renders into.
func (d *DoubleBuffer[T]) Write() T { return d.write }

// Swap makes the last written buffer readable.
func (d *DoubleBuffer[T]) Swap() {
	d.read, d.write = d.write, d.read
}

// Size returns the dimensions shared by both buffers.
func (d *DoubleBuffer[T]) Size() (int, int) {
	return d.read.Size()
}
