// Package payload detects and validates the travel request object the model
// embeds in its reply once every slot has been collected and confirmed.
package payload

import (
	"encoding/json"
	"strings"
)

// RequiredKeys is the contract for a complete travel request. Presence of
// every key makes a payload eligible to trigger downstream planning; value
// well-formedness is the model's responsibility and is not re-validated here.
var RequiredKeys = []string{
	"destination",
	"source",
	"startDateTime",
	"endDateTime",
	"adults",
	"children",
	"infants",
}

// Outcome classifies what a reply yielded.
type Outcome int

const (
	// OutcomeNotFound means the reply carried no parseable object. This is
	// the normal result for most turns of the dialogue.
	OutcomeNotFound Outcome = iota
	// OutcomeIncomplete means an object parsed but misses required keys.
	OutcomeIncomplete
	// OutcomeComplete means an object parsed with every required key present.
	OutcomeComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeComplete:
		return "complete"
	default:
		return "not_found"
	}
}

// Extraction is the result of scanning one model reply.
type Extraction struct {
	Outcome Outcome
	// Object is the raw JSON of the extracted payload, nil when not found.
	Object json.RawMessage
	// Missing lists the absent required keys when the outcome is incomplete.
	Missing []string
}

// Extract scans reply text for an embedded travel request object.
//
// The primary span is the first '{' through the last '}' of the reply. When
// that span does not parse (conversational text occasionally contains stray
// braces around the real object), balanced top-level candidates are tried
// left to right and the first one that parses and carries at least one
// required key wins. No candidate parsing means no payload yet, never an
// error.
func Extract(reply string) Extraction {
	obj := parseSpan(reply)
	if obj == nil {
		obj = parseCandidates(reply)
	}
	if obj == nil {
		return Extraction{Outcome: OutcomeNotFound}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return Extraction{Outcome: OutcomeNotFound}
	}

	var missing []string
	for _, k := range RequiredKeys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		return Extraction{Outcome: OutcomeIncomplete, Object: obj, Missing: missing}
	}
	return Extraction{Outcome: OutcomeComplete, Object: obj}
}

// parseSpan tries the outermost first-'{' to last-'}' substring.
func parseSpan(reply string) json.RawMessage {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return nil
	}
	span := reply[start : end+1]
	if !json.Valid([]byte(span)) {
		return nil
	}
	return json.RawMessage(span)
}

// parseCandidates scans balanced top-level brace spans left to right.
func parseCandidates(reply string) json.RawMessage {
	depth := 0
	start := -1
	for i := 0; i < len(reply); i++ {
		switch reply[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				candidate := reply[start : i+1]
				if json.Valid([]byte(candidate)) && hasRequiredKey(candidate) {
					return json.RawMessage(candidate)
				}
			}
		}
	}
	return nil
}

func hasRequiredKey(candidate string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return false
	}
	for _, k := range RequiredKeys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}
