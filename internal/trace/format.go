package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output file extension
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing / Perfetto JSON array
)

var formatNames = map[string]Format{
	"":       FormatAuto,
	"auto":   FormatAuto,
	"text":   FormatText,
	"ndjson": FormatNDJSON,
	"chrome": FormatChrome,
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(s)]; ok {
		return f, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson|chrome)", s)
}

// formatFor resolves FormatAuto from the output path.
func formatFor(path string) Format {
	switch {
	case strings.HasSuffix(path, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(path, ".json"):
		return FormatChrome
	default:
		return FormatText
	}
}

var processStart = time.Now()

// FormatEvent encodes one event. Chrome events carry no separator; the
// stream tracer owns the enclosing array.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	default:
		return formatText(ev)
	}
}

type ndjsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, _ := json.Marshal(ndjsonEvent{
		Time:     ev.Time.Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	return append(data, '\n')
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Phase string            `json:"ph"`
	TS    int64             `json:"ts"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

var chromePhases = map[Kind]string{KindSpanBegin: "B", KindSpanEnd: "E"}

// formatChrome maps spans to B/E pairs and everything else to global
// instant events. A span end keeps its detail as an argument.
func formatChrome(ev *Event) []byte {
	ce := chromeEvent{
		Name:  ev.Name,
		Cat:   ev.Scope.String(),
		Phase: chromePhases[ev.Kind],
		TS:    ev.Time.Sub(processStart).Microseconds(),
		PID:   1,
		TID:   ev.GID,
		Args:  ev.Extra,
	}
	if ce.Phase == "" {
		ce.Phase, ce.Scope = "i", "g"
	}
	if ev.Kind == KindSpanEnd && ev.Detail != "" {
		ce.Args = make(map[string]string, len(ev.Extra)+1)
		maps.Copy(ce.Args, ev.Extra)
		ce.Args["detail"] = ev.Detail
	}
	data, _ := json.Marshal(ce)
	return data
}

var textMarkers = map[Kind]string{
	KindSpanBegin: "-> ",
	KindSpanEnd:   "<- ",
	KindPoint:     "*  ",
	KindHeartbeat: "~  ",
}

// formatText renders "[  1.234ms] -> name (detail) {k=v}". Child spans are
// indented and extras are sorted by key.
func formatText(ev *Event) []byte {
	elapsed := float64(ev.Time.Sub(processStart).Microseconds()) / 1000
	b := fmt.Appendf(nil, "[%9.3fms] ", elapsed)
	if ev.ParentID != 0 {
		b = append(b, "  "...)
	}
	b = append(b, textMarkers[ev.Kind]...)
	b = append(b, ev.Name...)
	if ev.Detail != "" {
		b = fmt.Appendf(b, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		b = fmt.Appendf(b, " {%s}", strings.Join(pairs, ", "))
	}
	return append(b, '\n')
}
