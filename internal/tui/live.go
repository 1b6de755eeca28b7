// Package tui prints a throttled one-line status for headless runs, where the
// full console is not wanted.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/xosa/internal/loop"
)

const barWidth = 10

// LiveRenderer is a loop.Observer that rewrites a single terminal line at most
// frameRate times per second of loop time.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	frames    int
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 4
	}
	return &LiveRenderer{out: out, frameRate: frameRate}
}

func (r *LiveRenderer) OnTick(rep loop.Report) {
	if !r.lastFrame.IsZero() && rep.Time.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = rep.Time
	r.frames++
	fmt.Fprint(r.out, "\r"+Line(rep))
}

// Frames is the number of lines written so far.
func (r *LiveRenderer) Frames() int { return r.frames }

// Finish ends the status line.
func (r *LiveRenderer) Finish() {
	if r.frames > 0 {
		fmt.Fprintln(r.out)
	}
}

// Line formats one report as a fixed-width status line.
func Line(rep loop.Report) string {
	flags := ""
	if rep.Saturated() {
		flags += " SAT"
	}
	if rep.PublishErr != "" {
		flags += " PUB!"
	}
	return fmt.Sprintf("tick %6d  e_lin %+8.4f  e_ang %+8.4f  L %s %+7.4f  R %s %+7.4f  ovr %d%s",
		rep.Tick,
		rep.Error.Linear, rep.Error.Angular,
		bar(rep.Thrust.Left, rep.MotorGain), rep.Thrust.Left,
		bar(rep.Thrust.Right, rep.MotorGain), rep.Thrust.Right,
		rep.Overruns, flags)
}

// bar draws |v|/limit as a centred gauge, left of centre for reverse thrust.
func bar(v, limit float64) string {
	half := barWidth / 2
	cells := []rune(strings.Repeat("-", barWidth))
	if limit > 0 && !math.IsNaN(v) {
		n := int(math.Round(math.Min(1, math.Abs(v)/limit) * float64(half)))
		for i := 0; i < n; i++ {
			if v >= 0 {
				cells[half+i] = '='
			} else {
				cells[half-1-i] = '='
			}
		}
	}
	return "[" + string(cells) + "]"
}
