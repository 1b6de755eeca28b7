package history

import (
	"sync"
	"testing"
)

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(1000)
	for i := 0; i < 1500; i++ {
		b.Record(float64(i))
	}
	if b.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", b.Len())
	}
	samples := b.Samples()
	for i, s := range samples {
		want := float64(500 + i)
		if s.Value != want || s.Index != 500+i {
			t.Fatalf("sample %d = %+v, want value %v index %d", i, s, want, 500+i)
		}
	}
}

func TestBufferBelowCapacity(t *testing.T) {
	b := NewBuffer(4)
	b.Record(1)
	b.Record(2)
	got := b.Samples()
	if len(got) != 2 || got[0].Value != 1 || got[1].Value != 2 {
		t.Errorf("Samples() = %+v", got)
	}
}

func TestBufferDefaultCapacity(t *testing.T) {
	if c := NewBuffer(0).Capacity(); c != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", c, DefaultCapacity)
	}
}

func TestSamplesIsCopy(t *testing.T) {
	b := NewBuffer(3)
	b.Record(1)
	s := b.Samples()
	s[0].Value = 99
	if b.Samples()[0].Value != 1 {
		t.Error("Samples() must not alias the buffer")
	}
}

func TestBufferResetKeepsIndex(t *testing.T) {
	b := NewBuffer(3)
	b.Record(1)
	b.Record(2)
	b.Reset()
	b.Record(3)
	got := b.Samples()
	if len(got) != 1 || got[0].Index != 2 {
		t.Errorf("Samples() after Reset = %+v", got)
	}
}

func TestPairSnapshot(t *testing.T) {
	p := NewPair(2)
	if p.Snapshot().Len() != 0 {
		t.Fatal("new pair should be empty")
	}
	p.Record(1, -1)
	p.Record(2, -2)
	p.Record(3, -3)

	s := p.Snapshot()
	lin, ang := s.Values()
	if len(lin) != 2 || lin[0] != 2 || lin[1] != 3 {
		t.Errorf("linear = %v", lin)
	}
	if len(ang) != 2 || ang[0] != -2 || ang[1] != -3 {
		t.Errorf("angular = %v", ang)
	}

	p.Reset()
	if p.Snapshot().Len() != 0 {
		t.Error("Reset should publish an empty snapshot")
	}
}

func TestPairLengthsStaySynchronised(t *testing.T) {
	p := NewPair(50)
	r := p.Reader()
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			s := r.Read()
			if len(s.Linear) != len(s.Angular) {
				t.Errorf("lengths differ: %d vs %d", len(s.Linear), len(s.Angular))
				return
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		p.Record(float64(i), float64(-i))
	}
	close(done)
	wg.Wait()
}
