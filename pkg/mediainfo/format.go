package mediainfo

import (
	"fmt"
	"math"
	"strings"
)

const (
	UnitFPS = "fps"
	UnitTBN = "tbn"
	UnitTBC = "tbc"
)

// FormatFrameRateLike renders rates with two decimals only if needed
// and switches to kilo notation for multiples of 1000.
func FormatFrameRateLike(value float64, unit string) string {
	v := int64(math.Round(value * 100))
	switch {
	case v%100 != 0:
		return fmt.Sprintf("%.2f %s", value, unit)
	case v%(100*1000) != 0:
		return fmt.Sprintf("%.0f %s", value, unit)
	default:
		return fmt.Sprintf("%.0fk %s", value/1000, unit)
	}
}

func splitClock(units, unitsPerSecond int64) (hours, mins, secs, rest int64) {
	secs = units / unitsPerSecond
	rest = units % unitsPerSecond
	mins = secs / 60
	secs %= 60
	hours = mins / 60
	mins %= 60
	return
}

// FormatDuration renders HH:MM:SS.CC (CC = hundredths)
func FormatDuration(units, unitsPerSecond int64) string {
	if units == NoValue || unitsPerSecond <= 0 {
		return NotAvailable
	}
	hours, mins, secs, rest := splitClock(units, unitsPerSecond)
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, mins, secs, (100*rest)/unitsPerSecond)
}

// FormatStartTime is FormatDuration for signed values
func FormatStartTime(units, unitsPerSecond int64) string {
	if units == NoValue || unitsPerSecond <= 0 {
		return NotAvailable
	}
	hours, mins, secs, rest := splitClock(units, unitsPerSecond)
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, mins, secs, (100*abs64(rest))/unitsPerSecond)
}

func FormatBitrate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d kb/s", bitsPerSecond/1000)
}

// FormatAspectRatio derives pixel and display aspect ratio of a width x height frame
func FormatAspectRatio(sar Rational, width, height int64) (par, dar string, ok bool) {
	if !sar.Valid() {
		return "", "", false
	}
	d, _ := Reduce(width*sar.Num, height*sar.Den, MaxRatioTerm)
	if d.Den == 0 {
		return "", "", false
	}
	return fmt.Sprintf("%d:%d", sar.Num, sar.Den), fmt.Sprintf("%d:%d", d.Num, d.Den), true
}

func FormatSampleRate(hz int64) string {
	return fmt.Sprintf("%d Hz", hz)
}

func FormatLanguage(lang string) string {
	return fmt.Sprintf("(%s)", lang)
}

func isTagPrint(c byte) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '.' || c == ' '
}

// CodecTagString renders a little endian fourcc, unprintable bytes as [n]
func CodecTagString(tag uint32) string {
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		c := byte(tag & 0xff)
		if isTagPrint(c) {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "[%d]", c)
		}
		tag >>= 8
	}
	return sb.String()
}

func FormatCodecTag(tag uint32) string {
	return fmt.Sprintf("%s / 0x%04X", CodecTagString(tag), tag)
}
