package llm

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare object",
			input: `{"question": "why?"}`,
			want:  `{"question": "why?"}`,
			ok:    true,
		},
		{
			name:  "json fence",
			input: "Here you go:\n```json\n{\"score\": 0.7}\n```\nHope that helps!",
			want:  `{"score": 0.7}`,
			ok:    true,
		},
		{
			name:  "plain fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
			ok:    true,
		},
		{
			name:  "surrounding prose",
			input: `Sure. {"reason": "it matters"} is my answer.`,
			want:  `{"reason": "it matters"}`,
			ok:    true,
		},
		{
			name:  "nested objects",
			input: `{"outer": {"inner": 1}, "b": 2} trailing`,
			want:  `{"outer": {"inner": 1}, "b": 2}`,
			ok:    true,
		},
		{
			name:  "braces inside strings",
			input: `{"text": "a } brace and \" quote"}`,
			want:  `{"text": "a } brace and \" quote"}`,
			ok:    true,
		},
		{
			name:  "no object",
			input: "I cannot answer that.",
			ok:    false,
		},
		{
			name:  "unbalanced",
			input: `{"a": 1`,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok: expected %v, got %v (result %q)", tt.ok, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"0.7", 0.7, true},
		{"Score: 0.85 out of 1", 0.85, true},
		{"1.0", 1.0, true},
		{"0", 0.0, true},
		{"2.5", 1.0, true},  // clamped
		{"-0.3", 0.0, true}, // clamped
		{"no number here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseScore(tt.input)
		if ok != tt.ok {
			t.Errorf("%q: ok expected %v, got %v", tt.input, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("%q: expected %f, got %f", tt.input, tt.want, got)
		}
	}
}
