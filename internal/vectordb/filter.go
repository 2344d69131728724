package vectordb

import (
	"github.com/Morningstar-08/second-brain/internal/models"
)

// Predicate is one filter criterion over chunk payload fields. Predicates are
// combined with AllOf and compiled to the backend's native filter shape only
// at the query boundary.
type Predicate interface {
	compile() *models.Condition
}

// DocumentIDEquals matches chunks of a single document.
type DocumentIDEquals string

func (p DocumentIDEquals) compile() *models.Condition {
	return &models.Condition{
		Key:   models.FieldDocumentID,
		Match: &models.MatchValue{Value: string(p)},
	}
}

// FilenameEquals matches chunks with an exact filename.
type FilenameEquals string

func (p FilenameEquals) compile() *models.Condition {
	return &models.Condition{
		Key:   models.FieldFilename,
		Match: &models.MatchValue{Value: string(p)},
	}
}

// DateRange bounds uploadDate inclusively. Either end may be empty.
// String comparison of RFC3339 UTC timestamps is chronological because the
// ingestion path always writes the fixed-width zero-padded form.
type DateRange struct {
	From string
	To   string
}

func (p DateRange) compile() *models.Condition {
	if p.From == "" && p.To == "" {
		return nil
	}
	return &models.Condition{
		Key:   models.FieldUploadDate,
		Range: &models.RangeValue{GTE: p.From, LTE: p.To},
	}
}

// AllOf combines predicates into a conjunction. Nil and empty predicates are
// dropped; with nothing left it returns nil, meaning an unfiltered search.
func AllOf(predicates ...Predicate) *models.Filter {
	var must []models.Condition
	for _, p := range predicates {
		if p == nil {
			continue
		}
		if cond := p.compile(); cond != nil {
			must = append(must, *cond)
		}
	}
	if len(must) == 0 {
		return nil
	}
	return &models.Filter{Must: must}
}

// MatchesPayload evaluates a compiled filter against a payload map. The
// Qdrant deployment evaluates filters server-side; the in-memory backend and
// the scan-filter-delete fallback use this client-side equivalent.
func MatchesPayload(filter *models.Filter, payload map[string]any) bool {
	if filter == nil {
		return true
	}
	for _, cond := range filter.Must {
		value, ok := payload[cond.Key]
		if !ok {
			return false
		}
		if cond.Match != nil {
			if value != cond.Match.Value {
				return false
			}
		}
		if cond.Range != nil {
			s, ok := value.(string)
			if !ok {
				return false
			}
			if cond.Range.GTE != "" && s < cond.Range.GTE {
				return false
			}
			if cond.Range.LTE != "" && s > cond.Range.LTE {
				return false
			}
		}
	}
	return true
}
