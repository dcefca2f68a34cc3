package predict

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	shared "github.com/roamly/server/pkg"
)

// DefaultMaxRetries gives three attempts per section in total.
const DefaultMaxRetries = 2

// Outcome is the terminal result of one section's dispatch. Exhausted retries
// degrade to OK=false rather than an error so one section's failure never
// aborts its siblings.
type Outcome struct {
	Section  Section
	OK       bool
	Raw      json.RawMessage
	Attempts int
	Err      error
}

// Dispatcher issues structured-extraction requests with bounded, sequential
// retries per section and concurrent fan-out across sections.
type Dispatcher struct {
	Model      shared.ModelClient
	MaxRetries int

	// Sleep is injectable for tests; nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(model shared.ModelClient) *Dispatcher {
	return &Dispatcher{Model: model, MaxRetries: DefaultMaxRetries}
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DispatchSection runs one section to a terminal outcome. Attempts are
// strictly sequential: each waits for the prior outcome before deciding
// whether and how long to back off.
func (d *Dispatcher) DispatchSection(ctx context.Context, logger *slog.Logger, file shared.FileRef, section Section) Outcome {
	instruction := Instruction(section)
	maxRetries := d.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attempts = attempt + 1
		logger.Debug("Dispatching section", "section", section, "attempt", attempts, "max_attempts", maxRetries+1)

		text, err := d.Model.GenerateContent(ctx, instruction, file)
		if err == nil {
			raw, decodeErr := ExtractJSON(text)
			if decodeErr == nil {
				logger.Info("Section dispatch succeeded", "section", section, "attempts", attempts)
				return Outcome{Section: section, OK: true, Raw: raw, Attempts: attempts}
			}
			err = decodeErr
		}
		lastErr = err

		kind := Classify(err)
		logger.Warn("Section dispatch attempt failed",
			"section", section,
			"attempt", attempts,
			"kind", kind.String(),
			"error", err,
		)
		if !kind.Retryable() {
			break
		}
		if attempt < maxRetries {
			if sleepErr := d.sleep(ctx, kind.Backoff()); sleepErr != nil {
				lastErr = sleepErr
				break
			}
		}
	}

	logger.Error("Section dispatch exhausted", "section", section, "attempts", attempts, "error", lastErr)
	return Outcome{Section: section, OK: false, Attempts: attempts, Err: lastErr}
}

// ExtractJSON strips Markdown code-fence markers from the model's raw output
// and decodes what remains. The model is asked for bare JSON but does not
// reliably honor that, and fences arrive both with and without a language tag.
func ExtractJSON(output string) (json.RawMessage, error) {
	cleaned := strings.Replace(output, "```json", "", 1)
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
