// Package log holds the types of the session logs a driver collects and
// the capability that filters them.
package log

import "time"

// Type names a log a session can be asked for.
type Type string

// Log types. The embedded engine collects only Browser, which holds the
// page console and uncaught script errors.
const (
	Browser     Type = "browser"
	Driver      Type = "driver"
	Server      Type = "server"
	Performance Type = "performance"
)

// Level is the severity of a message, or the threshold of a log.
type Level string

// Levels, from the quietest threshold to the loudest.
const (
	Off     Level = "OFF"
	Severe  Level = "SEVERE"
	Warning Level = "WARNING"
	Info    Level = "INFO"
	Debug   Level = "DEBUG"
	All     Level = "ALL"
)

var rank = map[Level]int{
	Off:     0,
	Severe:  1,
	Warning: 2,
	Info:    3,
	Debug:   4,
	All:     5,
}

// Includes reports whether a message of level m passes threshold l.
// Unknown message levels pass every threshold but Off.
func (l Level) Includes(m Level) bool {
	t, ok := rank[l]
	if !ok {
		t = rank[All]
	}
	if t == rank[Off] {
		return false
	}
	r, ok := rank[m]
	if !ok || r == rank[All] {
		return true
	}
	return r <= t
}

// CapabilitiesKey is the capability holding the per-log thresholds.
const CapabilitiesKey = "loggingPrefs"

// Capabilities maps log types to their thresholds.
type Capabilities map[Type]Level

// Threshold returns the level set for typ in prefs, which is either a
// Capabilities or the map it decodes to from JSON. It is All when prefs
// does not name typ.
func Threshold(prefs interface{}, typ Type) Level {
	switch p := prefs.(type) {
	case Capabilities:
		if l, ok := p[typ]; ok {
			return l
		}
	case map[string]interface{}:
		if l, ok := p[string(typ)].(string); ok {
			return Level(l)
		}
	case map[string]string:
		if l, ok := p[string(typ)]; ok {
			return Level(l)
		}
	}
	return All
}

// Message is one entry of a log.
type Message struct {
	Timestamp time.Time
	Level     Level
	Message   string
}
