package monitoring

import (
	"fmt"
	"sync"
	"testing"
)

func TestSetLogger(t *testing.T) {
	var got string
	orig := SetLogger(func(format string, v ...interface{}) { got = fmt.Sprintf(format, v...) })
	defer SetLogger(orig)
	if orig == nil {
		t.Fatal("default logger missing")
	}

	Logf("tick %d", 7)
	if got != "tick 7" {
		t.Errorf("captured %q, want %q", got, "tick 7")
	}

	SetLogger(nil)
	Logf("muted %d", 1)
	if got != "tick 7" {
		t.Errorf("nil logger should be a no-op, captured %q", got)
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	orig := SetLogger(nil)
	defer SetLogger(orig)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				Logf("line %d", j)
			}
		}()
	}
	for i := 0; i < 100; i++ {
		SetLogger(nil)
	}
	wg.Wait()
}
