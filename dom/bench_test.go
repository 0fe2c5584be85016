package dom_test

import (
	stdjson "encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jdom/dom"
	"github.com/goccy/go-json"
)

func benchInput() []byte {
	var sb strings.Builder
	sb.WriteString(`{"episodes": [`)
	for i := range 2000 {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"episode": %d, "title": "Episode %d", "rating": %d.5, "hasDetail": %v, "cast": ["a", "b", null]}`,
			i, i, i%10, i%2 == 0)
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

func BenchmarkParse(b *testing.B) {
	input := benchInput()
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Std", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := stdjson.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
	b.Run("GoJSON", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := json.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
	b.Run("DOM", func(b *testing.B) {
		for b.Loop() {
			if _, err := dom.ParseBytes(input); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}
