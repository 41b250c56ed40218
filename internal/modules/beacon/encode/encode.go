// Package encode renders an APRS complete weather report line from a
// beacon record. Field order and tag characters are fixed by the APRS
// protocol: position and symbol, then wind direction, wind speed (/),
// gust (g), temperature (t), hour rain (r), 24-hour rain (p), rain since
// midnight (P), humidity (h) and barometric pressure (b).
package encode

import (
	"fmt"
	"strings"
	"time"

	"github.com/gjr80/weewx-aprx/internal/modules/beacon/types"
)

// EncodingError reports a beacon record without the mandatory station
// identity or location. Missing weather data is never an encoding error.
type EncodingError struct {
	Missing string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode: beacon record missing %s", e.Missing)
}

// Encode renders rec as a single weather report line, without a trailing
// newline. The line carries the station callsign in a TNC2-style header
// followed by the timestamped (@DDHHMMz, zulu) weather payload.
func Encode(rec types.BeaconRecord) (string, error) {
	if rec.Callsign == "" {
		return "", &EncodingError{Missing: "callsign"}
	}
	if rec.Position == nil {
		return "", &EncodingError{Missing: "position"}
	}

	pos := *rec.Position
	table := pos.SymbolTable
	code := pos.SymbolCode
	if table == 0 {
		table = '/'
	}
	if code == 0 {
		code = '_'
	}

	var b strings.Builder
	b.WriteString(rec.Callsign)
	b.WriteString(">APRS,TCPIP*:")
	b.WriteString(time.Unix(rec.Timestamp, 0).UTC().Format("@021504"))
	b.WriteByte('z')
	b.WriteString(FormatLatitude(pos.Latitude))
	b.WriteByte(table)
	b.WriteString(FormatLongitude(pos.Longitude))
	b.WriteByte(code)
	b.WriteString(rec.Fields.WindDir)
	b.WriteByte('/')
	b.WriteString(rec.Fields.WindSpeed)
	b.WriteByte('g')
	b.WriteString(rec.Fields.WindGust)
	b.WriteByte('t')
	b.WriteString(rec.Fields.Temperature)
	b.WriteByte('r')
	b.WriteString(rec.Fields.RainHour)
	b.WriteByte('p')
	b.WriteString(rec.Fields.Rain24)
	b.WriteByte('P')
	b.WriteString(rec.Fields.RainDay)
	b.WriteByte('h')
	b.WriteString(rec.Fields.Humidity)
	b.WriteByte('b')
	b.WriteString(rec.Fields.Pressure)
	if rec.Comment != "" {
		b.WriteByte(' ')
		b.WriteString(rec.Comment)
	}
	return b.String(), nil
}
