// Package history keeps the bounded error histories shown by the tuning views.
package history

import (
	"github.com/eapache/queue"

	"github.com/san-kum/xosa/internal/shared"
)

// DefaultCapacity is the number of samples kept per axis.
const DefaultCapacity = 1000

// Sample is one recorded error value. Index is the insertion ordinal, so it
// keeps growing after old samples are evicted.
type Sample struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Buffer is a drop-oldest sample buffer. It is not safe for concurrent use;
// readers go through a Pair snapshot instead.
type Buffer struct {
	q        *queue.Queue
	capacity int
	next     int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{q: queue.New(), capacity: capacity}
}

// Record appends v and evicts from the head until the buffer is within capacity.
func (b *Buffer) Record(v float64) {
	b.q.Add(Sample{Index: b.next, Value: v})
	b.next++
	for b.q.Length() > b.capacity {
		b.q.Remove()
	}
}

func (b *Buffer) Len() int      { return b.q.Length() }
func (b *Buffer) Capacity() int { return b.capacity }

// Samples copies the buffer contents, oldest first.
func (b *Buffer) Samples() []Sample {
	out := make([]Sample, b.q.Length())
	for i := range out {
		out[i] = b.q.Get(i).(Sample)
	}
	return out
}

// Reset drops all samples. Indices keep counting.
func (b *Buffer) Reset() {
	b.q = queue.New()
}

// Snapshot is an immutable view of both axes taken after the same tick.
type Snapshot struct {
	Linear  []Sample `json:"linear"`
	Angular []Sample `json:"angular"`
}

// Len is the number of samples per axis.
func (s Snapshot) Len() int { return len(s.Linear) }

// Values returns the bare values of both axes, ready for plotting.
func (s Snapshot) Values() (linear, angular []float64) {
	linear = make([]float64, len(s.Linear))
	for i, v := range s.Linear {
		linear[i] = v.Value
	}
	angular = make([]float64, len(s.Angular))
	for i, v := range s.Angular {
		angular[i] = v.Value
	}
	return linear, angular
}

// Pair records the linear and angular histories together and publishes a
// snapshot of both after every record, so readers never observe the axes with
// different lengths.
type Pair struct {
	linear  *Buffer
	angular *Buffer
	out     *shared.Writer[Snapshot]
	view    shared.Reader[Snapshot]
}

func NewPair(capacity int) *Pair {
	w, r := shared.New(Snapshot{Linear: []Sample{}, Angular: []Sample{}})
	return &Pair{
		linear:  NewBuffer(capacity),
		angular: NewBuffer(capacity),
		out:     w,
		view:    r,
	}
}

// Record appends one sample per axis, linear first, then publishes.
func (p *Pair) Record(linear, angular float64) {
	p.linear.Record(linear)
	p.angular.Record(angular)
	p.out.Write(Snapshot{Linear: p.linear.Samples(), Angular: p.angular.Samples()})
}

// Reset clears both axes and publishes the empty snapshot.
func (p *Pair) Reset() {
	p.linear.Reset()
	p.angular.Reset()
	p.out.Write(Snapshot{Linear: []Sample{}, Angular: []Sample{}})
}

// Snapshot returns the last published snapshot without blocking the recorder.
func (p *Pair) Snapshot() Snapshot { return p.view.Read() }

// Reader returns a read handle for views in other goroutines.
func (p *Pair) Reader() shared.Reader[Snapshot] { return p.view }

func (p *Pair) Capacity() int { return p.linear.Capacity() }
