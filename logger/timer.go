package logger

import (
	"fmt"
	"time"
)

type Timer struct {
	StartTime time.Time
	Name      string
	Console   *Console
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.StartTime)
}

func (t *Timer) End() time.Duration {
	duration := t.Elapsed()
	t.Console.Debug("%s completed in %s", t.Name, FormatDuration(duration))
	return duration
}

func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
