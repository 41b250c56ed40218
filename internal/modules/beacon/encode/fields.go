package encode

import (
	"fmt"
	"math"

	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
)

// Per-field placeholders, sized to the field width so a missing sensor
// never shifts the fixed-width framing of the fields that follow.
const (
	placeholder3        = "..."
	placeholderHumidity = ".."
	placeholderPressure = "....."
)

// Values holds observation values already converted to canonical APRS
// units (degrees F, mph, inches, millibars). A nil value renders as the
// field's placeholder.
type Values struct {
	WindDir     *float64
	WindSpeed   *float64
	WindGust    *float64
	Temperature *float64
	RainHour    *float64
	Rain24      *float64
	RainDay     *float64
	Humidity    *float64
	Pressure    *float64
}

// FormatFields renders every field slot. It never fails: out-of-range
// values clamp to the nearest representable boundary and missing values
// become placeholders, because a malformed beacon is worse than a lossy
// one.
func FormatFields(v Values) types.WeatherFields {
	return types.WeatherFields{
		WindDir:     FormatWindDir(v.WindDir),
		WindSpeed:   FormatSpeed(v.WindSpeed),
		WindGust:    FormatSpeed(v.WindGust),
		Temperature: FormatTemperature(v.Temperature),
		RainHour:    FormatRain(v.RainHour),
		Rain24:      FormatRain(v.Rain24),
		RainDay:     FormatRain(v.RainDay),
		Humidity:    FormatHumidity(v.Humidity),
		Pressure:    FormatPressure(v.Pressure),
	}
}

// FormatWindDir renders a wind direction in degrees true as a 3-digit
// field clamped to 0-360.
func FormatWindDir(v *float64) string {
	if v == nil {
		return placeholder3
	}
	return fmt.Sprintf("%03d", clamp(round(*v), 0, 360))
}

// FormatSpeed renders a wind speed or gust in mph as a 3-digit field.
func FormatSpeed(v *float64) string {
	if v == nil {
		return placeholder3
	}
	return fmt.Sprintf("%03d", clamp(round(*v), 0, 999))
}

// FormatTemperature renders degrees Fahrenheit in 3 characters. The APRS
// convention spends one character slot on the sign: -5F is "-05".
func FormatTemperature(v *float64) string {
	if v == nil {
		return placeholder3
	}
	t := round(*v)
	if t < 0 {
		return fmt.Sprintf("-%02d", clamp(-t, 0, 99))
	}
	return fmt.Sprintf("%03d", clamp(t, 0, 999))
}

// FormatRain renders a rainfall total in inches as hundredths of an
// inch, truncated to 3 digits.
func FormatRain(v *float64) string {
	if v == nil {
		return placeholder3
	}
	return fmt.Sprintf("%03d", clamp(round(*v*100), 0, 999))
}

// FormatHumidity renders relative humidity percent in 2 digits. APRS
// reserves "00" for 100%, so values clamp to 1-100 and 100 renders "00".
func FormatHumidity(v *float64) string {
	if v == nil {
		return placeholderHumidity
	}
	h := clamp(round(*v), 1, 100)
	if h == 100 {
		return "00"
	}
	return fmt.Sprintf("%02d", h)
}

// FormatPressure renders barometric pressure in millibars as a 5-digit
// field in tenths of a millibar.
func FormatPressure(v *float64) string {
	if v == nil {
		return placeholderPressure
	}
	return fmt.Sprintf("%05d", clamp(round(*v*10), 0, 99999))
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
