package labels

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{
			name:    "plain array",
			content: `["Budget", "Route", "Packing list"]`,
			want:    []string{"Budget", "Route", "Packing list"},
		},
		{
			name:    "surrounding whitespace and item trimming",
			content: "\n  [\"  Budget \", \"Route\", \" Packing list\"]  \n",
			want:    []string{"Budget", "Route", "Packing list"},
		},
		{
			name:    "non-string items skipped",
			content: `["Budget", 42, null, {"a": 1}, "Route", true, "Packing list"]`,
			want:    []string{"Budget", "Route", "Packing list"},
		},
		{
			name:    "blank items dropped below minimum",
			content: `["Budget", "   ", "", "Route"]`,
			wantErr: ErrTooFewLabels,
		},
		{
			name:    "object instead of array",
			content: `{"labels": ["a", "b", "c"]}`,
			wantErr: ErrMalformedOutput,
		},
		{
			name:    "prose reply",
			content: "Sure! Here are some ideas: budget, route, packing",
			wantErr: ErrMalformedOutput,
		},
		{
			name:    "json null",
			content: "null",
			wantErr: ErrTooFewLabels,
		},
		{
			name:    "empty reply",
			content: "",
			wantErr: ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLabels(tt.content)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLabelsTruncatesToMax(t *testing.T) {
	items := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		items = append(items, `"item `+string(rune('a'+i))+`"`)
	}
	got, err := DecodeLabels("[" + strings.Join(items, ",") + "]")
	require.NoError(t, err)
	require.Len(t, got, MaxLabels)
	assert.Equal(t, "item a", got[0])
	assert.Equal(t, "item j", got[MaxLabels-1])
}

func TestFallbackLabelsRoot(t *testing.T) {
	tests := []struct {
		seed      string
		wantFirst string
	}{
		{seed: "Learn Rust?", wantFirst: "What is Learn Rust?"},
		{seed: "  Plan a trip.  ", wantFirst: "What is Plan a trip?"},
		{seed: "Why?!?", wantFirst: "What is Why?"},
		{seed: "", wantFirst: "What is Idea?"},
		{seed: "   ", wantFirst: "What is Idea?"},
		{seed: "...", wantFirst: "What is Idea?"},
	}
	for _, tt := range tests {
		got := FallbackLabels(tt.seed, 0)
		assert.Equal(t, []string{
			tt.wantFirst,
			"Key components",
			"Examples",
			"Risks & constraints",
			"Next steps",
		}, got, "seed %q", tt.seed)
	}

	assert.Equal(t, FallbackLabels("x", 0), FallbackLabels("x", -3))
}

func TestFallbackLabelsDeeperIgnoresSeed(t *testing.T) {
	want := []string{"Define", "Break into steps", "Tools / resources", "Measure success", "Common pitfalls"}
	assert.Equal(t, want, FallbackLabels("anything", 1))
	assert.Equal(t, want, FallbackLabels("", 7))

	got := FallbackLabels("x", 2)
	got[0] = "mutated"
	assert.Equal(t, "Define", FallbackLabels("x", 2)[0])
}

func TestDeterministicBackendNeverFails(t *testing.T) {
	labels, err := Deterministic{}.Labels(context.Background(), "Plan a trip", 0)
	require.NoError(t, err)
	assert.Len(t, labels, 5)
}
