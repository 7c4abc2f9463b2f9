package logger

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

type ProgressBar struct {
	bar      *progressbar.ProgressBar
	complete bool
}

func NewProgressBar(total int64, label string, w io.Writer) *ProgressBar {
	if w == nil {
		w = io.Discard
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	return &ProgressBar{bar: bar}
}

func (p *ProgressBar) Increment(amount int64) {
	if p.complete {
		return
	}
	_ = p.bar.Add64(amount)
}

func (p *ProgressBar) Complete() {
	if p.complete {
		return
	}
	_ = p.bar.Finish()
	p.complete = true
}
