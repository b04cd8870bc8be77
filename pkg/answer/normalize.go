package answer

import (
	"fmt"
	"strconv"
)

// Payload is the canonical shape every engine result is reduced to before
// rendering or persistence. Answer is always defined; the optional fields
// stay zero when the result did not carry them.
type Payload struct {
	Answer  string      `json:"answer"`
	Sources []Source    `json:"sources,omitempty"`
	SQL     string      `json:"sql,omitempty"`
	Rows    interface{} `json:"rows,omitempty"`
}

// Source is one citation from the document retrieval arm. Every field is
// optional; Score is set only when the engine sent a numeric value.
type Source struct {
	Title   string   `json:"title,omitempty"`
	URL     string   `json:"url,omitempty"`
	Snippet string   `json:"snippet,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

// Normalize reduces whatever the engine returned to a Payload. A plain
// string becomes the answer verbatim. A record contributes its known fields:
// the answer text comes from "answer" with "result" as fallback, "sources"
// is copied only when it is a list, "sql" and "rows" ride along when
// present. Any other shape is stringified. Never fails.
func Normalize(raw interface{}) Payload {
	switch result := raw.(type) {
	case string:
		return Payload{Answer: result}

	case map[string]interface{}:
		payload := Payload{Answer: answerText(result)}
		if items, ok := result["sources"].([]interface{}); ok {
			payload.Sources = mapSources(items)
		}
		if value, ok := result["sql"]; ok && truthy(value) {
			payload.SQL = stringify(value)
		}
		if rows, ok := result["rows"]; ok {
			payload.Rows = rows
		}
		return payload

	case nil:
		return Payload{}

	default:
		return Payload{Answer: stringify(result)}
	}
}

// answerText picks the main answer from a result record. An absent or empty
// "answer" falls through to "result"; neither yields the empty string.
func answerText(record map[string]interface{}) string {
	if value, ok := record["answer"]; ok && truthy(value) {
		return stringify(value)
	}
	if value, ok := record["result"]; ok && truthy(value) {
		return stringify(value)
	}
	return ""
}

// mapSources converts raw source entries into typed Sources. Entries that
// are not records degrade to an empty Source so positional numbering is
// preserved for the renderer.
func mapSources(items []interface{}) []Source {
	sources := make([]Source, 0, len(items))
	for _, item := range items {
		record, _ := item.(map[string]interface{})
		sources = append(sources, Source{
			Title:   optionalText(record, "title"),
			URL:     optionalText(record, "url"),
			Snippet: snippetText(record),
			Score:   optionalScore(record),
		})
	}
	return sources
}

// snippetText reads the source excerpt, accepting "text" as the legacy key.
func snippetText(record map[string]interface{}) string {
	if snippet := optionalText(record, "snippet"); snippet != "" {
		return snippet
	}
	return optionalText(record, "text")
}

func optionalText(record map[string]interface{}, key string) string {
	if record == nil {
		return ""
	}
	if value, ok := record[key]; ok && truthy(value) {
		return stringify(value)
	}
	return ""
}

func optionalScore(record map[string]interface{}) *float64 {
	if record == nil {
		return nil
	}
	switch score := record["score"].(type) {
	case float64:
		return &score
	case float32:
		value := float64(score)
		return &value
	case int:
		value := float64(score)
		return &value
	case int64:
		value := float64(score)
		return &value
	}
	return nil
}

// truthy mirrors the presence checks loosely typed engines assume: nil,
// empty strings, zero numbers, false and empty collections all count as
// absent. Anything else counts as present.
func truthy(value interface{}) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	case float32:
		return typed != 0
	case []interface{}:
		return len(typed) > 0
	case map[string]interface{}:
		return len(typed) > 0
	}
	return true
}

func stringify(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		// JSON numbers decode as float64; keep large integral values like
		// populations out of scientific notation.
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
