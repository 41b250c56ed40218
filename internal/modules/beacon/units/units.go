// Package units normalizes incoming observation values into the canonical
// units the APRS weather grammar requires: degrees Fahrenheit, miles per
// hour, inches of rain and millibars of pressure. Conversions are pure
// functions; results are rounded to the precision of the destination
// text field (whole degrees, whole mph, hundredths of an inch, tenths of
// a millibar) rounding half away from zero.
package units

import (
	"fmt"
	"math"
)

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

type SpeedUnit string

const (
	MetersPerSecond SpeedUnit = "meter_per_second"
	KmPerHour       SpeedUnit = "km_per_hour"
	MilesPerHour    SpeedUnit = "mile_per_hour"
	Knots           SpeedUnit = "knot"
)

type RainUnit string

const (
	Millimeters RainUnit = "mm"
	Centimeters RainUnit = "cm"
	Inches      RainUnit = "inch"
)

type PressureUnit string

const (
	Hectopascals PressureUnit = "hPa"
	Millibars    PressureUnit = "mbar"
	InchesHg     PressureUnit = "inHg"
	Kilopascals  PressureUnit = "kPa"
)

// ConversionError reports a source unit the converter does not recognize.
// This is a configuration or programming error, not a data error.
type ConversionError struct {
	Quantity string
	Unit     string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("units: unrecognized %s unit %q", e.Quantity, e.Unit)
}

// ToFahrenheit converts v to whole degrees Fahrenheit.
func ToFahrenheit(v float64, from TemperatureUnit) (float64, error) {
	switch from {
	case Fahrenheit:
		return roundTo(v, 0), nil
	case Celsius:
		return roundTo(v*9/5+32, 0), nil
	default:
		return 0, &ConversionError{Quantity: "temperature", Unit: string(from)}
	}
}

// ToMph converts v to whole miles per hour.
func ToMph(v float64, from SpeedUnit) (float64, error) {
	switch from {
	case MilesPerHour:
		return roundTo(v, 0), nil
	case MetersPerSecond:
		return roundTo(v*2.2369362920544, 0), nil
	case KmPerHour:
		return roundTo(v*0.621371192237334, 0), nil
	case Knots:
		return roundTo(v*1.15077944802354, 0), nil
	default:
		return 0, &ConversionError{Quantity: "speed", Unit: string(from)}
	}
}

// ToInches converts v to hundredths of an inch of rain.
func ToInches(v float64, from RainUnit) (float64, error) {
	switch from {
	case Inches:
		return roundTo(v, 2), nil
	case Millimeters:
		return roundTo(v/25.4, 2), nil
	case Centimeters:
		return roundTo(v/2.54, 2), nil
	default:
		return 0, &ConversionError{Quantity: "rain", Unit: string(from)}
	}
}

// ToMillibars converts v to tenths of a millibar.
func ToMillibars(v float64, from PressureUnit) (float64, error) {
	switch from {
	case Millibars, Hectopascals:
		// 1 hPa == 1 mbar
		return roundTo(v, 1), nil
	case Kilopascals:
		return roundTo(v*10, 1), nil
	case InchesHg:
		return roundTo(v*33.8638866667, 1), nil
	default:
		return 0, &ConversionError{Quantity: "pressure", Unit: string(from)}
	}
}

// roundTo rounds half away from zero to the given number of decimal
// places, which is math.Round's behavior.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
