package takeout

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultSizeLimit is the serialized byte budget for a bounded batch. Staged
// payloads above this size degrade model latency and cost without improving
// prediction quality.
const DefaultSizeLimit = 1_000_000

// ErrInvalidActivityData means the activity document was not a JSON array.
var ErrInvalidActivityData = errors.New("takeout: activity data is not a sequence")

// LocationInfo is one location reference attached to a raw activity record.
type LocationInfo struct {
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source,omitempty"`
}

// RawActivityRecord is one entry of the source export. Exports carry many
// more fields than these; anything unrecognized is ignored, never rejected.
type RawActivityRecord struct {
	Header        string         `json:"header"`
	Title         string         `json:"title"`
	TitleURL      string         `json:"titleUrl,omitempty"`
	Time          string         `json:"time"`
	LocationInfos []LocationInfo `json:"locationInfos,omitempty"`
}

// NormalizedActivity is the subset of a raw record the pipeline cares about.
type NormalizedActivity struct {
	Header        string         `json:"header"`
	Title         string         `json:"title"`
	TitleURL      string         `json:"titleUrl,omitempty"`
	Time          string         `json:"time"`
	LocationInfos []LocationInfo `json:"locationInfos,omitempty"`
}

// BoundedBatch is an ordered, prefix-truncated subsequence of normalized
// activities whose serialized size fits the byte budget. Truncation drops the
// tail unconditionally; Truncated and Dropped surface that to the caller so
// degraded prediction quality is at least diagnosable.
type BoundedBatch struct {
	Activities []NormalizedActivity `json:"activities"`
	Truncated  bool                 `json:"truncated"`
	Dropped    int                  `json:"dropped"`
}

// ParseActivities decodes the activity history document. The top level must
// be a JSON array; anything else is hostile or corrupted input.
func ParseActivities(text string) ([]RawActivityRecord, error) {
	var probe json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActivityData, err)
	}

	trimmed := firstNonSpace(probe)
	if trimmed != '[' {
		return nil, ErrInvalidActivityData
	}

	var records []RawActivityRecord
	if err := json.Unmarshal(probe, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActivityData, err)
	}
	return records, nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}

// Normalize projects raw records onto the minimal schema, field by field.
// Output is 1:1 with input, order preserved, nothing fabricated.
func Normalize(raw []RawActivityRecord) []NormalizedActivity {
	normalized := make([]NormalizedActivity, len(raw))
	for i, r := range raw {
		normalized[i] = NormalizedActivity{
			Header:        r.Header,
			Title:         r.Title,
			TitleURL:      r.TitleURL,
			Time:          r.Time,
			LocationInfos: r.LocationInfos,
		}
	}
	return normalized
}

// Bound truncates activities to a strict prefix whose serialized size stays
// within limit. A zero or negative limit means DefaultSizeLimit.
//
// This is a greedy prefix scan: records are admitted in order until the next
// one would overflow the budget, and everything after that point is dropped,
// however relevant it might have been. A smarter by-weight selection was
// considered and rejected to keep the batch order-preserving.
func Bound(activities []NormalizedActivity, limit int) (BoundedBatch, error) {
	if limit <= 0 {
		limit = DefaultSizeLimit
	}

	full, err := json.Marshal(activities)
	if err != nil {
		return BoundedBatch{}, fmt.Errorf("takeout: serialize activities: %w", err)
	}
	if len(full) <= limit {
		return BoundedBatch{Activities: activities}, nil
	}

	// Running total mirrors json.Marshal of the prefix slice: two bytes of
	// brackets plus each element and its separating comma.
	total := len("[]")
	kept := 0
	for _, activity := range activities {
		element, err := json.Marshal(activity)
		if err != nil {
			return BoundedBatch{}, fmt.Errorf("takeout: serialize activity: %w", err)
		}
		candidate := total + len(element)
		if kept > 0 {
			candidate++ // comma
		}
		if candidate > limit {
			break
		}
		total = candidate
		kept++
	}

	return BoundedBatch{
		Activities: activities[:kept],
		Truncated:  true,
		Dropped:    len(activities) - kept,
	}, nil
}

// Serialize renders the batch payload staged for the model.
func (b BoundedBatch) Serialize() ([]byte, error) {
	return json.Marshal(b.Activities)
}
