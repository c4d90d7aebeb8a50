package subtitles

import "fmt"

// FormatTimestamp renders seconds as H:MM:SS.CC with centisecond precision,
// the timing format ASS dialogue lines use.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int64(seconds*100 + 0.5)
	hours := centis / 360000
	centis %= 360000
	minutes := centis / 6000
	centis %= 6000
	secs := centis / 100
	centis %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
