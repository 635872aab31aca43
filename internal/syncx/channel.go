// Package syncx holds small concurrency helpers.
package syncx

// UnboundedChan decouples a producer from a slow consumer: sends on In
// never block, values queue in an internal buffer until Out drains them.
// Closing In flushes the buffer and then closes Out.
type UnboundedChan[T any] struct {
	in  chan<- T
	out <-chan T
}

func (c *UnboundedChan[T]) In() chan<- T  { return c.in }
func (c *UnboundedChan[T]) Out() <-chan T { return c.out }

// Close stops the channel. Buffered values are still delivered to Out
// before it closes. Sending after Close panics.
func (c *UnboundedChan[T]) Close() {
	close(c.in)
}

func NewUnboundedChan[T any](capacity int) UnboundedChan[T] {
	in := make(chan T, capacity)
	out := make(chan T, capacity)

	go func() {
		defer close(out)
		buffer := make([]T, 0, capacity)

	pump:
		for {
			val, ok := <-in
			if !ok {
				break pump
			}

			select {
			case out <- val:
				continue
			default:
			}

			// out is full, spill into the buffer until it drains
			buffer = append(buffer, val)
			for len(buffer) > 0 {
				select {
				case val, ok := <-in:
					if !ok {
						break pump
					}
					buffer = append(buffer, val)
				case out <- buffer[0]:
					buffer = buffer[1:]
					if len(buffer) == 0 {
						// fresh backing array so the drained one can be collected
						buffer = make([]T, 0, capacity)
					}
				}
			}
		}

		for len(buffer) > 0 {
			out <- buffer[0]
			buffer = buffer[1:]
		}
	}()

	return UnboundedChan[T]{in: in, out: out}
}
