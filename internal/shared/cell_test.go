package shared

import (
	"errors"
	"sync"
	"testing"
)

type triple struct {
	A, B int64
	C    float64
	Tag  string
}

func TestNewReadsInitial(t *testing.T) {
	_, r := New(42.0)
	if got := r.Read(); got != 42.0 {
		t.Errorf("Read() = %v, want 42", got)
	}
	if r.Version() != 0 {
		t.Errorf("Version() = %d, want 0", r.Version())
	}
}

func TestWriteVisibleToAllReaders(t *testing.T) {
	w, r1 := New(triple{})
	r2 := r1
	r3 := w.Reader()

	want := triple{A: 1, B: 2, C: 3.5, Tag: "x"}
	w.Write(want)

	for i, r := range []Reader[triple]{r1, r2, r3} {
		if got := r.Read(); got != want {
			t.Errorf("reader %d: Read() = %+v, want %+v", i, got, want)
		}
	}
	if w.Read() != want {
		t.Errorf("writer Read() = %+v, want %+v", w.Read(), want)
	}
}

func TestSecondWriterRejected(t *testing.T) {
	c := NewCell(0)
	if _, err := c.Writer(); err != nil {
		t.Fatalf("first Writer() failed: %v", err)
	}
	w, err := c.Writer()
	if !errors.Is(err, ErrWriterClaimed) {
		t.Errorf("second Writer() err = %v, want ErrWriterClaimed", err)
	}
	if w != nil {
		t.Error("second Writer() returned a handle")
	}
}

func TestNewClaimsWriter(t *testing.T) {
	w, r := New(1)
	if _, err := r.cell.Writer(); !errors.Is(err, ErrWriterClaimed) {
		t.Errorf("Writer() after New err = %v, want ErrWriterClaimed", err)
	}
	w.Write(2)
	if r.Read() != 2 {
		t.Errorf("Read() = %d, want 2", r.Read())
	}
}

func TestVersionCountsWrites(t *testing.T) {
	w, r := New("a")
	for i := 0; i < 5; i++ {
		w.Write("b")
	}
	v, ver := r.Load()
	if v != "b" || ver != 5 {
		t.Errorf("Load() = (%q, %d), want (b, 5)", v, ver)
	}
}

func TestUpdate(t *testing.T) {
	w, r := New(10.0)
	got := w.Update(func(v float64) float64 { return v * 2 })
	if got != 20 || r.Read() != 20 {
		t.Errorf("Update() = %v, Read() = %v, want 20", got, r.Read())
	}
}

func TestZeroReaderInvalid(t *testing.T) {
	var r Reader[int]
	if r.Valid() {
		t.Error("zero Reader should not be valid")
	}
	_, r = New(0)
	if !r.Valid() {
		t.Error("Reader from New should be valid")
	}
}

func TestConcurrentReadsNeverTear(t *testing.T) {
	w, r := New(triple{})

	const writes = 20000
	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				v := r.Read()
				if v.B != -v.A || v.C != float64(v.A) {
					t.Errorf("torn read: %+v", v)
					return
				}
			}
		}()
	}

	for i := int64(1); i <= writes; i++ {
		w.Write(triple{A: i, B: -i, C: float64(i)})
	}
	close(done)
	wg.Wait()

	if got := r.Read(); got.A != writes {
		t.Errorf("final Read().A = %d, want %d", got.A, writes)
	}
}
