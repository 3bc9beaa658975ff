// Package progress wraps the progress bar shown while streaming
// corpus files. Display is cosmetic only and off by default.
package progress

import "github.com/schollz/progressbar/v3"

// Bar is a nil-safe progress bar: a nil *Bar reports nothing, so
// callers never branch on the display toggle.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewLines returns a line-count bar, or nil when display is disabled.
// A negative total renders a spinner for streams of unknown length.
func NewLines(total int64, description string, enabled bool) *Bar {
	if !enabled {
		return nil
	}
	return &Bar{bar: progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("lines"),
	)}
}

func (b *Bar) Add(n int) {
	if b == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil {
		return
	}
	_ = b.bar.Finish()
}
