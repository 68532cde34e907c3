package adf

import "time"

// amigaEpoch is 1978-01-01 00:00:00 UTC, day zero for Amiga on-disk dates.
var amigaEpoch = time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC)

// Date is an Amiga on-disk timestamp: days since the Amiga epoch, minutes
// within the day, and ticks (1/50s) within the minute.
type Date struct {
	Days  int32
	Mins  int32
	Ticks int32
}

// Time converts d to a POSIX instant: epoch + days + minutes + ticks/50.
func (d Date) Time() time.Time {
	return amigaEpoch.
		AddDate(0, 0, int(d.Days)).
		Add(time.Duration(d.Mins) * time.Minute).
		Add(time.Duration(d.Ticks) * time.Second / TicksPerSecond)
}

// DateFromTime converts a POSIX instant to an Amiga on-disk timestamp.
func DateFromTime(t time.Time) Date {
	t = t.UTC()
	d := t.Sub(amigaEpoch)
	days := int32(d / (24 * time.Hour))
	rem := d - time.Duration(days)*24*time.Hour
	mins := int32(rem / time.Minute)
	rem -= time.Duration(mins) * time.Minute
	ticks := int32(rem * TicksPerSecond / time.Second)
	return Date{Days: days, Mins: mins, Ticks: ticks}
}

func readDate(b []byte, off int) Date {
	return Date{
		Days:  getI32(b, off),
		Mins:  getI32(b, off+4),
		Ticks: getI32(b, off+8),
	}
}

func writeDate(b []byte, off int, d Date) {
	putI32(b, off, d.Days)
	putI32(b, off+4, d.Mins)
	putI32(b, off+8, d.Ticks)
}
