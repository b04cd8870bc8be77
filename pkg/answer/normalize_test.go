package answer

import (
	"testing"
)

func TestNormalizeString(t *testing.T) {
	payload := Normalize("Seattle is in Washington.")

	if payload.Answer != "Seattle is in Washington." {
		t.Errorf("Answer = %q, want the raw string", payload.Answer)
	}
	if payload.Sources != nil || payload.SQL != "" || payload.Rows != nil {
		t.Errorf("optional fields must stay empty for string results: %+v", payload)
	}
}

func TestNormalizeAnswerFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]interface{}
		want   string
	}{
		{
			name:   "answer key wins",
			record: map[string]interface{}{"answer": "NYC", "result": "ignored"},
			want:   "NYC",
		},
		{
			name:   "missing answer falls back to result",
			record: map[string]interface{}{"result": "Houston"},
			want:   "Houston",
		},
		{
			name:   "empty answer falls back to result",
			record: map[string]interface{}{"answer": "", "result": "Miami"},
			want:   "Miami",
		},
		{
			name:   "neither key yields empty string",
			record: map[string]interface{}{"sql": "SELECT 1"},
			want:   "",
		},
		{
			name:   "non-string answer is stringified",
			record: map[string]interface{}{"answer": 42},
			want:   "42",
		},
		{
			name:   "zero answer falls through like absent",
			record: map[string]interface{}{"answer": 0, "result": "Chicago"},
			want:   "Chicago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Normalize(tt.record)
			if payload.Answer != tt.want {
				t.Errorf("Answer = %q, want %q", payload.Answer, tt.want)
			}
		})
	}
}

func TestNormalizeSources(t *testing.T) {
	raw := map[string]interface{}{
		"answer": "ok",
		"sources": []interface{}{
			map[string]interface{}{
				"title":   "Seattle Guide",
				"url":     "https://example.com/seattle",
				"snippet": "The Space Needle...",
				"score":   0.8321,
			},
			map[string]interface{}{
				"text": "legacy snippet key",
			},
			"not a record at all",
		},
	}

	payload := Normalize(raw)

	if len(payload.Sources) != 3 {
		t.Fatalf("Sources len = %d, want 3", len(payload.Sources))
	}

	first := payload.Sources[0]
	if first.Title != "Seattle Guide" || first.URL != "https://example.com/seattle" {
		t.Errorf("first source mismapped: %+v", first)
	}
	if first.Score == nil || *first.Score != 0.8321 {
		t.Errorf("first source score = %v, want 0.8321", first.Score)
	}

	if payload.Sources[1].Snippet != "legacy snippet key" {
		t.Errorf("snippet must fall back to the text key, got %q", payload.Sources[1].Snippet)
	}

	third := payload.Sources[2]
	if third.Title != "" || third.URL != "" || third.Snippet != "" || third.Score != nil {
		t.Errorf("non-record source must degrade to an empty Source: %+v", third)
	}
}

func TestNormalizeMalformedSourcesDropped(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{
			name: "sources is a string",
			raw:  map[string]interface{}{"answer": "ok", "sources": "nope"},
		},
		{
			name: "sources is a record",
			raw:  map[string]interface{}{"answer": "ok", "sources": map[string]interface{}{"title": "x"}},
		},
		{
			name: "sources is a number",
			raw:  map[string]interface{}{"answer": "ok", "sources": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Normalize(tt.raw)
			if payload.Sources != nil {
				t.Errorf("malformed sources must be dropped, got %+v", payload.Sources)
			}
			if payload.Answer != "ok" {
				t.Errorf("answer must survive malformed sources, got %q", payload.Answer)
			}
		})
	}
}

func TestNormalizeSQLAndRows(t *testing.T) {
	raw := map[string]interface{}{
		"answer": "ok",
		"sql":    "SELECT name FROM cities",
		"rows": []interface{}{
			map[string]interface{}{"name": "Seattle"},
		},
	}

	payload := Normalize(raw)

	if payload.SQL != "SELECT name FROM cities" {
		t.Errorf("SQL = %q", payload.SQL)
	}
	rows, ok := payload.Rows.([]interface{})
	if !ok || len(rows) != 1 {
		t.Errorf("Rows must be carried verbatim, got %#v", payload.Rows)
	}
}

func TestNormalizeEmptySQLStaysAbsent(t *testing.T) {
	for _, value := range []interface{}{nil, "", 0, false} {
		payload := Normalize(map[string]interface{}{"answer": "ok", "sql": value})
		if payload.SQL != "" {
			t.Errorf("sql=%#v must normalize to absent, got %q", value, payload.SQL)
		}
	}
}

func TestNormalizeScoreTypes(t *testing.T) {
	tests := []struct {
		name  string
		score interface{}
		want  *float64
	}{
		{name: "float64", score: 0.5, want: floatPtr(0.5)},
		{name: "int", score: 2, want: floatPtr(2)},
		{name: "string is not a score", score: "0.9", want: nil},
		{name: "missing", score: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := map[string]interface{}{}
			if tt.score != nil {
				record["score"] = tt.score
			}
			raw := map[string]interface{}{
				"answer":  "ok",
				"sources": []interface{}{record},
			}
			payload := Normalize(raw)
			got := payload.Sources[0].Score
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Score = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Score = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestNormalizeOtherShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want string
	}{
		{name: "nil", raw: nil, want: ""},
		{name: "number", raw: 12.5, want: "12.5"},
		{name: "large decoded number", raw: 8336817.0, want: "8336817"},
		{name: "bool", raw: true, want: "true"},
		{name: "list", raw: []interface{}{"a", "b"}, want: "[a b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Normalize(tt.raw)
			if payload.Answer != tt.want {
				t.Errorf("Answer = %q, want %q", payload.Answer, tt.want)
			}
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
