package predict_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	shared "github.com/roamly/server/pkg"
	"github.com/roamly/server/pkg/predict"
	"github.com/roamly/server/pkg/testing/mocks"
)

var testFile = shared.FileRef{URI: "mock://takeout", Name: "files/takeout-test"}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestDispatchSection_SucceedsFirstAttempt(t *testing.T) {
	var seenInstruction string
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			seenInstruction = instruction
			return `{"lifestyle":["hiking"],"otherPreferences":[],"lifestyleParagraph":"Outdoorsy."}`, nil
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = noSleep

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionLifestyle)

	require.True(t, outcome.OK)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Contains(t, seenInstruction, "lifestyle")
	assert.JSONEq(t, `{"lifestyle":["hiking"],"otherPreferences":[],"lifestyleParagraph":"Outdoorsy."}`, string(outcome.Raw))
}

func TestDispatchSection_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			calls++
			if calls <= 2 {
				return "", &googleapi.Error{Code: 503, Message: "backend unavailable"}
			}
			return `{"categories":[]}`, nil
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = noSleep

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionCategories)

	require.True(t, outcome.OK)
	assert.Equal(t, 3, outcome.Attempts)
}

func TestDispatchSection_ExhaustsRetries(t *testing.T) {
	calls := 0
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			calls++
			return "", &googleapi.Error{Code: 500}
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = noSleep

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionTransportation)

	require.False(t, outcome.OK)
	assert.Equal(t, predict.DefaultMaxRetries+1, calls)
	assert.Error(t, outcome.Err)
}

func TestDispatchSection_FatalErrorStopsImmediately(t *testing.T) {
	calls := 0
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			calls++
			return "", fmt.Errorf("prompt was blocked")
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = noSleep

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionLifestyle)

	require.False(t, outcome.OK)
	assert.Equal(t, 1, calls, "fatal errors must not be retried")
}

func TestDispatchSection_RateLimitGetsLongerBackoff(t *testing.T) {
	var slept []time.Duration
	calls := 0
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			calls++
			if calls == 1 {
				return "", &googleapi.Error{Code: 429, Message: "resource exhausted"}
			}
			return `{"categories":[]}`, nil
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = func(ctx context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return nil
	}

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionCategories)

	require.True(t, outcome.OK)
	require.Len(t, slept, 1)
	assert.Equal(t, 10*time.Second, slept[0])
}

func TestDispatchSection_MalformedJSONRetries(t *testing.T) {
	calls := 0
	model := &mocks.MockModelClient{
		GenerateContentFunc: func(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
			calls++
			if calls == 1 {
				return `{"categories": [`, nil
			}
			return `{"categories":[]}`, nil
		},
	}
	d := predict.NewDispatcher(model)
	d.Sleep = noSleep

	outcome := d.DispatchSection(context.Background(), slog.Default(), testFile, predict.SectionCategories)

	require.True(t, outcome.OK)
	assert.Equal(t, 2, outcome.Attempts)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare json",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "fenced json",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"a\":1}  \n",
			want:  `{"a":1}`,
		},
		{
			name:    "not json",
			input:   "I could not process the file.",
			wantErr: true,
		},
		{
			name:    "truncated json",
			input:   `{"a":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := predict.ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(string(raw)))
		})
	}
}

func TestInstruction_EmbedsSectionSchema(t *testing.T) {
	for _, section := range predict.Sections {
		instruction := predict.Instruction(section)
		assert.NotEmpty(t, instruction)
		assert.Contains(t, instruction, "JSON", "section %s", section)
	}

	// The three instructions must be distinct prompts.
	seen := map[string]predict.Section{}
	for _, section := range predict.Sections {
		instruction := predict.Instruction(section)
		if prior, dup := seen[instruction]; dup {
			t.Errorf("sections %s and %s share an instruction", prior, section)
		}
		seen[instruction] = section
	}
}
