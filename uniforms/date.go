package uniforms

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const secondsPerDay = 86400

var monthDays = [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeap(y int64) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func yearDays(y int64) int64 {
	if isLeap(y) {
		return 366
	}
	return 365
}

// Date decodes Unix seconds into (year, zero-based month, day of month,
// seconds since midnight) on the proleptic Gregorian calendar.
func Date(unix int64) mgl32.Vec4 {
	days := unix / secondsPerDay
	secs := unix % secondsPerDay
	if secs < 0 {
		secs += secondsPerDay
		days--
	}

	year := int64(1970)
	for days < 0 {
		year--
		days += yearDays(year)
	}
	for days >= yearDays(year) {
		days -= yearDays(year)
		year++
	}

	month := 0
	for ; month < 11; month++ {
		n := monthDays[month]
		if month == 1 && isLeap(year) {
			n++
		}
		if days < n {
			break
		}
		days -= n
	}

	return mgl32.Vec4{float32(year), float32(month), float32(days + 1), float32(secs)}
}

// LocalDate is Date for t in its own zone, with sub-second precision in
// the seconds component.
func LocalDate(t time.Time) mgl32.Vec4 {
	_, offset := t.Zone()
	d := Date(t.Unix() + int64(offset))
	d[3] += float32(t.Nanosecond()) / 1e9
	return d
}
