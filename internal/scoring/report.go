package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Base carries the fields every dimension reports alongside its evidence.
type Base struct {
	Score  float64 `json:"score"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Common returns the shared score, label and weight.
func (b Base) Common() Base {
	return b
}

func newBase(key DimensionKey, score float64) Base {
	return Base{Score: clampScore(score), Label: key.Label(), Weight: key.Weight()}
}

// SectionResult is the outcome of one dimension analyzer.
type SectionResult interface {
	Dimension() DimensionKey
	Common() Base
}

// ContactResult reports which contact channels were detected.
type ContactResult struct {
	Base
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

func (*ContactResult) Dimension() DimensionKey { return DimensionContactInfo }

// SectionsResult reports which standard resume headings were detected.
// Missing only ever lists essential sections.
type SectionsResult struct {
	Base
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

func (*SectionsResult) Dimension() DimensionKey { return DimensionSections }

// LengthResult reports the word count and its band feedback.
type LengthResult struct {
	Base
	WordCount int    `json:"word_count"`
	Feedback  string `json:"feedback"`
}

func (*LengthResult) Dimension() DimensionKey { return DimensionLength }

// ActionVerbsResult reports the distinct lexicon verbs used.
type ActionVerbsResult struct {
	Base
	Found []string `json:"found"`
	Count int      `json:"count"`
}

func (*ActionVerbsResult) Dimension() DimensionKey { return DimensionActionVerbs }

// QuantifiableResult reports numeric evidence of impact.
type QuantifiableResult struct {
	Base
	MatchCount int      `json:"match_count"`
	TypesFound []string `json:"types_found"`
}

func (*QuantifiableResult) Dimension() DimensionKey { return DimensionQuantifiable }

// KeywordResult reports ATS keyword coverage.
type KeywordResult struct {
	Base
	Found      []string           `json:"found"`
	ByCategory KeywordsByCategory `json:"by_category"`
}

func (*KeywordResult) Dimension() DimensionKey { return DimensionKeywords }

// FormattingResult lists the formatting issues detected, in detection order.
type FormattingResult struct {
	Base
	Issues []string `json:"issues"`
}

func (*FormattingResult) Dimension() DimensionKey { return DimensionFormatting }

// CategoryKeywords is the set of keywords found for one pool.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// KeywordsByCategory encodes as a JSON object whose keys keep pool order.
type KeywordsByCategory []CategoryKeywords

func (kc KeywordsByCategory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range kc {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, c.Category, c.Keywords); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (kc *KeywordsByCategory) UnmarshalJSON(data []byte) error {
	*kc = KeywordsByCategory{}
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return err
		}
		*kc = append(*kc, CategoryKeywords{Category: key, Keywords: keywords})
		return nil
	})
}

// Sections is an ordered mapping from dimension to result. The zero value
// is an empty mapping ready to use.
type Sections struct {
	keys    []DimensionKey
	results map[DimensionKey]SectionResult
}

// Set stores r under its dimension, appending the key on first insert.
func (s *Sections) Set(r SectionResult) {
	if s.results == nil {
		s.results = make(map[DimensionKey]SectionResult)
	}
	key := r.Dimension()
	if _, exists := s.results[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.results[key] = r
}

// Get returns the result stored for key.
func (s Sections) Get(key DimensionKey) (SectionResult, bool) {
	r, ok := s.results[key]
	return r, ok
}

// Keys returns the dimensions in insertion order.
func (s Sections) Keys() []DimensionKey {
	return append([]DimensionKey(nil), s.keys...)
}

// Len returns the number of stored dimensions.
func (s Sections) Len() int {
	return len(s.keys)
}

// Each calls fn for every result in insertion order.
func (s Sections) Each(fn func(SectionResult)) {
	for _, key := range s.keys {
		fn(s.results[key])
	}
}

func (s Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, string(key), s.results[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Sections) UnmarshalJSON(data []byte) error {
	*s = Sections{}
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		r, err := newResult(DimensionKey(key))
		if err != nil {
			return err
		}
		if err := dec.Decode(r); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		s.Set(r)
		return nil
	})
}

func newResult(key DimensionKey) (SectionResult, error) {
	switch key {
	case DimensionContactInfo:
		return &ContactResult{}, nil
	case DimensionSections:
		return &SectionsResult{}, nil
	case DimensionLength:
		return &LengthResult{}, nil
	case DimensionActionVerbs:
		return &ActionVerbsResult{}, nil
	case DimensionQuantifiable:
		return &QuantifiableResult{}, nil
	case DimensionKeywords:
		return &KeywordResult{}, nil
	case DimensionFormatting:
		return &FormattingResult{}, nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", key)
	}
}

// AnalysisReport is the full result of scoring one resume.
type AnalysisReport struct {
	OverallScore float64  `json:"overall_score"`
	Sections     Sections `json:"sections"`
	Suggestions  []string `json:"suggestions"`
	Keywords     []string `json:"keywords"`
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func decodeObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
