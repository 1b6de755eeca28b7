// Package shared provides a single-writer, multi-reader cell for passing the
// latest value of a type between goroutines without a lock.
//
// A [Cell] holds one value. Exactly one [Writer] may be claimed per cell; any
// number of [Reader] handles may observe it:
//
//	w, r := shared.New(motion.Twist{})
//	go func() { w.Write(next) }()
//	latest := r.Read()
//
// Each write publishes a new immutable snapshot and swaps a pointer to it, so a
// reader always sees a whole value from exactly one write. Readers never block
// and never block the writer.
package shared
