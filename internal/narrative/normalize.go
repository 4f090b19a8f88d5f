package narrative

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func trimmed(s string) string { return strings.TrimSpace(s) }

// FlattenRatings normalizes the raw nested ratings container into an ordered
// list of evidence items. Each category may arrive as a map of index->item, a
// list of items, or a single scalar; an item is either a bare numeric/string
// rating or an object carrying "rating" and an optional "comment".
//
// Entries without a parseable rating in [1,5] are dropped, never coerced.
// Categories are visited in sorted name order so the output is repeatable,
// and per-category indices start at 1 for item labeling.
func FlattenRatings(ratings map[string]any) []EvidenceItem {
	if len(ratings) == 0 {
		return nil
	}

	categories := make([]string, 0, len(ratings))
	for c := range ratings {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var items []EvidenceItem
	for _, category := range categories {
		for idx, raw := range categoryValues(ratings[category]) {
			item, ok := coerceItem(raw)
			if !ok {
				continue
			}
			item.Category = category
			item.Label = fmt.Sprintf("%s item %d", category, idx+1)
			items = append(items, item)
		}
	}
	return items
}

// categoryValues flattens one per-category container into an ordered value
// slice. Map containers are ordered by sorted key so repeated calls agree.
func categoryValues(container any) []any {
	switch v := container.(type) {
	case nil:
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, aerr := strconv.Atoi(keys[i])
			b, berr := strconv.Atoi(keys[j])
			if aerr == nil && berr == nil {
				return a < b
			}
			return keys[i] < keys[j]
		})
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, v[k])
		}
		return out
	case []any:
		return v
	default:
		return []any{v}
	}
}

// coerceItem accepts the item shapes the upstream clients are known to send:
// a bare number, a numeric string, or an object with rating and comment.
func coerceItem(raw any) (EvidenceItem, bool) {
	switch v := raw.(type) {
	case nil:
		return EvidenceItem{}, false
	case map[string]any:
		r, ok := parseRating(v["rating"])
		if !ok {
			return EvidenceItem{}, false
		}
		comment, _ := v["comment"].(string)
		return EvidenceItem{Rating: r, Comment: trimmed(comment)}, true
	default:
		r, ok := parseRating(v)
		if !ok {
			return EvidenceItem{}, false
		}
		return EvidenceItem{Rating: r}, true
	}
}

func parseRating(raw any) (float64, bool) {
	var r float64
	switch v := raw.(type) {
	case float64:
		r = v
	case float32:
		r = float64(v)
	case int:
		r = float64(v)
	case int64:
		r = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(trimmed(v), 64)
		if err != nil {
			return 0, false
		}
		r = parsed
	default:
		return 0, false
	}
	if r < 1 || r > 5 {
		return 0, false
	}
	return r, true
}

// Fragment renders the item as the evidence string used for ranking and for
// verbatim inclusion in evidence-mode prompts.
func (e EvidenceItem) Fragment() string {
	if e.HasComment() {
		return fmt.Sprintf("%s: rating=%.1f; comment=%s", e.Label, e.Rating, trimmed(e.Comment))
	}
	return fmt.Sprintf("%s: rating=%.1f", e.Label, e.Rating)
}

// AnyComments reports whether at least one item carries a free-text comment.
// It decides evidence mode versus ratings-only mode.
func AnyComments(items []EvidenceItem) bool {
	for _, it := range items {
		if it.HasComment() {
			return true
		}
	}
	return false
}
