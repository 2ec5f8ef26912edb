package chatdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTemplate(t *testing.T) {
	data := TemplateData{DieName: "Inspiration", SourceUser: "Alice", TargetUser: "Bob", Amount: 2}

	tests := []struct {
		name     string
		template string
		data     TemplateData
		want     string
	}{
		{
			name:     "all placeholders",
			template: "[$sourceUser] gave [$amount] [$dieName] to [$targetUser].",
			data:     data,
			want:     "Alice gave 2 Inspiration to Bob.",
		},
		{
			name:     "names are trimmed",
			template: "[$ sourceUser  ] used [$dieName ].",
			data:     data,
			want:     "Alice used Inspiration.",
		},
		{
			name:     "zero amount stays literal",
			template: "Used [$amount] [$dieName].",
			data:     TemplateData{DieName: "d20"},
			want:     "Used [$amount] d20.",
		},
		{
			name:     "missing target stays literal",
			template: "[$sourceUser] to [$targetUser]",
			data:     TemplateData{SourceUser: "Alice"},
			want:     "Alice to [$targetUser]",
		},
		{
			name:     "unknown names stay literal",
			template: "[$color] [$dieName]",
			data:     data,
			want:     "[$color] Inspiration",
		},
		{
			name:     "no placeholders",
			template: "plain text [not one]",
			data:     data,
			want:     "plain text [not one]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTemplate(tt.template, tt.data))
		})
	}
}

func TestMergeData(t *testing.T) {
	t.Run("content only", func(t *testing.T) {
		assert.Equal(t, map[string]any{"content": "hi"}, MergeData("hi", nil))
	})

	t.Run("custom data wins", func(t *testing.T) {
		got := MergeData("hi", map[string]any{"content": "override", "whisper": true})
		assert.Equal(t, map[string]any{"content": "override", "whisper": true}, got)
	})
}

func TestEventContent(t *testing.T) {
	assert.Equal(t, "hi", (&Event{Data: map[string]any{"content": "hi"}}).Content())
	assert.Equal(t, "", (&Event{Data: map[string]any{"content": 3}}).Content())
	assert.Equal(t, "", (&Event{}).Content())
}
