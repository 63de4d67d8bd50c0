// Package render contains helpers shared by the output formats.
package render

import (
	"fmt"
	"time"

	"github.com/aarondl/opt/opt"
	"github.com/shopspring/decimal"
)

const (
	Missing        = "-"
	secondsDigits  = 3
	nanosPerSecond = -9
)

// Seconds returns the duration in seconds rounded to milliseconds, e.g. 91.200
func Seconds(d time.Duration) string {
	return decimal.New(int64(d), nanosPerSecond).StringFixed(secondsDigits)
}

// LapTime formats a lap time as m:ss.fff
func LapTime(d time.Duration) string {
	ms := decimal.New(int64(d), nanosPerSecond).Shift(secondsDigits).Round(0).IntPart()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// OptLapTime formats a lap time, missing values are rendered as Missing
func OptLapTime(v opt.Val[time.Duration]) string {
	if d, ok := v.Get(); ok {
		return LapTime(d)
	}
	return Missing
}

func OptSeconds(v opt.Val[float64]) string {
	if s, ok := v.Get(); ok {
		return decimal.NewFromFloat(s).StringFixed(secondsDigits)
	}
	return Missing
}
