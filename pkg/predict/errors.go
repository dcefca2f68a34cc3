package predict

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"google.golang.org/api/googleapi"
)

// Kind classifies a model-call failure for retry policy. Classification is
// data-driven off the adapter's returned error so policy stays testable
// without fabricating SDK error subtypes.
type Kind int

const (
	// KindFatal failures stop the section immediately; retrying cannot help.
	KindFatal Kind = iota
	// KindTransient covers network blips, 5xx responses and deadline misses.
	KindTransient
	// KindRateLimited covers quota and resource-exhaustion signals, which
	// need materially more recovery time than a network blip.
	KindRateLimited
	// KindDecode covers malformed JSON in the model's output. The model
	// sometimes produces valid JSON on regeneration, so this retries.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindDecode:
		return "decode"
	default:
		return "fatal"
	}
}

// Retryable reports whether another attempt is worth making.
func (k Kind) Retryable() bool { return k != KindFatal }

// Backoff is the cooldown before the next attempt for this kind of failure.
func (k Kind) Backoff() time.Duration {
	if k == KindRateLimited {
		return 10 * time.Second
	}
	return time.Second
}

// Classify maps an error from the model adapter onto a retry kind.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindDecode
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return KindRateLimited
		case apiErr.Code >= 500:
			return KindTransient
		default:
			return KindFatal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	return KindFatal
}
