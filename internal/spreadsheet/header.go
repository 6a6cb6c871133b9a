package spreadsheet

import "strings"

// Field is the semantic name a parser assigns to a spreadsheet column.
type Field string

// HeaderRule maps header-cell fragments to a semantic field. Each entry in
// AnyOf is a conjunction of substrings that must all appear in the header
// cell; entries are alternatives. Matching is case-insensitive and
// diacritic-preserving unless CaseSensitive is set — some fragments carry
// meaning only in upper case ("CH" must not match "khách").
type HeaderRule struct {
	Field         Field
	AnyOf         [][]string
	CaseSensitive bool
}

// Contains builds the common single-fragment rule.
func Contains(field Field, fragments ...string) HeaderRule {
	alts := make([][]string, 0, len(fragments))
	for _, f := range fragments {
		alts = append(alts, []string{f})
	}
	return HeaderRule{Field: field, AnyOf: alts}
}

// ColumnMap resolves semantic fields to column indices in one header row.
type ColumnMap map[Field]int

// FindHeader scans at most maxScan rows for one satisfying match.
func FindHeader(grid [][]string, maxScan int, match func(row []string) bool) (int, bool) {
	limit := len(grid)
	if maxScan < limit {
		limit = maxScan
	}
	for i := 0; i < limit; i++ {
		if match(grid[i]) {
			return i, true
		}
	}
	return 0, false
}

// MapColumns evaluates the rule table against a header row. First match
// wins per field; columns matching an already-mapped field are ignored.
func MapColumns(header []string, rules []HeaderRule) ColumnMap {
	cm := make(ColumnMap, len(rules))
	for idx, cell := range header {
		flat := flattenHeaderCell(cell)
		lowered := strings.ToLower(flat)
		for _, rule := range rules {
			if _, done := cm[rule.Field]; done {
				continue
			}
			text := lowered
			if rule.CaseSensitive {
				text = flat
			}
			if matchesRule(text, rule) {
				cm[rule.Field] = idx
			}
		}
	}
	return cm
}

// Missing reports which of the required fields are unmapped, so parsers
// can return an explicit incomplete-column-map result instead of reading
// from undefined indices.
func (cm ColumnMap) Missing(required ...Field) []Field {
	var missing []Field
	for _, f := range required {
		if _, ok := cm[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Cell returns the row value for a mapped field, or "" when the field is
// unmapped or the row is short.
func (cm ColumnMap) Cell(row []string, f Field) string {
	idx, ok := cm[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func matchesRule(cell string, rule HeaderRule) bool {
	for _, conj := range rule.AnyOf {
		all := true
		for _, frag := range conj {
			if !rule.CaseSensitive {
				frag = strings.ToLower(frag)
			}
			if !strings.Contains(cell, frag) {
				all = false
				break
			}
		}
		if all && len(conj) > 0 {
			return true
		}
	}
	return false
}

func flattenHeaderCell(cell string) string {
	// Multi-line headers are common in POS exports.
	return strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
}

// RowHasCell reports whether any cell of the row contains the fragment
// (case-insensitive). Used by header-row detection heuristics.
func RowHasCell(row []string, fragment string) bool {
	needle := strings.ToLower(fragment)
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), needle) {
			return true
		}
	}
	return false
}

// RowHasExactCell reports whether any trimmed cell equals the literal.
func RowHasExactCell(row []string, literal string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) == literal {
			return true
		}
	}
	return false
}
