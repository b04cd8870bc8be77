package answer

import (
	"fmt"
	"sort"
)

// Section kinds, in the order Render emits them.
const (
	SectionAnswer  = "answer"
	SectionSQL     = "sql"
	SectionRows    = "rows"
	SectionSources = "sources"
)

const (
	titleSQL     = "SQL used (debug)"
	titleRows    = "Structured results"
	titleSources = "Sources & citations"
)

// Section is one display block of a rendered answer. The answer section is
// always first and always present; the debug and citation sections follow
// only when the payload carries their data, and are collapsible.
type Section struct {
	Kind        string       `json:"kind"`
	Title       string       `json:"title,omitempty"`
	Collapsible bool         `json:"collapsible,omitempty"`
	Text        string       `json:"text,omitempty"`
	Table       *Table       `json:"table,omitempty"`
	Items       []SourceItem `json:"items,omitempty"`
}

// Table is the tabular view of structured rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// SourceItem is one numbered citation.
type SourceItem struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
	Score    string `json:"score,omitempty"`
}

// Render lays out a payload as ordered display sections: answer, then SQL,
// then rows, then sources. Pure; the payload is not mutated and rendering
// never fails.
func Render(payload Payload) []Section {
	sections := []Section{{
		Kind: SectionAnswer,
		Text: payload.Answer,
	}}

	if payload.SQL != "" {
		sections = append(sections, Section{
			Kind:        SectionSQL,
			Title:       titleSQL,
			Collapsible: true,
			Text:        payload.SQL,
		})
	}

	if truthy(payload.Rows) {
		section := Section{
			Kind:        SectionRows,
			Title:       titleRows,
			Collapsible: true,
		}
		if table, ok := tabulate(payload.Rows); ok {
			section.Table = table
		} else {
			// Rows that do not fit a grid still show up, just unformatted.
			section.Text = fmt.Sprintf("%v", payload.Rows)
		}
		sections = append(sections, section)
	}

	if len(payload.Sources) > 0 {
		items := make([]SourceItem, 0, len(payload.Sources))
		for i, source := range payload.Sources {
			item := SourceItem{
				Position: i + 1,
				Title:    source.Title,
				URL:      source.URL,
				Snippet:  source.Snippet,
			}
			if item.Title == "" {
				item.Title = fmt.Sprintf("Source %d", i+1)
			}
			if source.Score != nil {
				item.Score = fmt.Sprintf("%.3f", *source.Score)
			}
			items = append(items, item)
		}
		sections = append(sections, Section{
			Kind:        SectionSources,
			Title:       titleSources,
			Collapsible: true,
			Items:       items,
		})
	}

	return sections
}

// tabulate turns a list of records into a column grid. Column order follows
// first appearance across records, with each record's keys visited sorted so
// the grid is deterministic. Ragged records leave blank cells. Any other
// rows shape reports false and the caller falls back to a raw dump.
func tabulate(rows interface{}) (*Table, bool) {
	items, ok := rows.([]interface{})
	if !ok || len(items) == 0 {
		return nil, false
	}

	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		records = append(records, record)
	}

	var columns []string
	seen := make(map[string]bool)
	for _, record := range records {
		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	grid := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			if value, ok := record[column]; ok {
				row[i] = stringify(value)
			}
		}
		grid = append(grid, row)
	}

	return &Table{Columns: columns, Rows: grid}, true
}
