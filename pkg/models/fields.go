package models

import (
	"strconv"
	"strings"
)

// CatalogItem and ConsumptionRecord come from feeds whose schemas vary by
// vendor, so both stay raw JSON objects and every concept is read through one
// ordered list of accepted field names, tried in priority order. The lists
// below are the single source of truth for that tolerance; call sites must not
// re-derive their own variants.

// CatalogItem is one learning-content catalog row (content_catalog.json).
type CatalogItem map[string]any

// ConsumptionRecord is one learning-record-store event (lrs.json).
type ConsumptionRecord map[string]any

var (
	contentIDFields  = []string{"content_id", "contentId", "id", "content"}
	personIDFields   = []string{"person_id", "user_id", "learner_id"}
	tagFields        = []string{"metrics", "tags", "labels", "keywords", "related_metric", "content_tag", "tag"}
	competencyFields = []string{"competencies", "competency"}
)

func fieldString(row map[string]any, candidates []string) string {
	for _, key := range candidates {
		if v, ok := row[key]; ok {
			if s := anyToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func fieldStrings(row map[string]any, candidates []string) []string {
	var out []string
	for _, key := range candidates {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		switch vv := v.(type) {
		case []any:
			for _, item := range vv {
				if s := anyToString(item); s != "" {
					out = append(out, strings.ToLower(strings.TrimSpace(s)))
				}
			}
		default:
			if s := anyToString(vv); s != "" {
				out = append(out, strings.ToLower(strings.TrimSpace(s)))
			}
		}
	}
	return out
}

func anyToString(v any) string {
	switch vv := v.(type) {
	case string:
		return strings.TrimSpace(vv)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case bool:
		if vv {
			return "true"
		}
		return "false"
	}
	return ""
}

func anyToFloat(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(vv), 64); err == nil {
			return f, true
		}
	case bool:
		if vv {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ContentID returns the catalog row's content identifier, or "".
func (c CatalogItem) ContentID() string { return fieldString(c, contentIDFields) }

// Mode returns the catalog row's mode literal ("Sales", "CS", "Production").
func (c CatalogItem) Mode() string {
	if v, ok := c["mode"]; ok {
		return anyToString(v)
	}
	return ""
}

// SkillID returns the competency/skill this content maps to.
func (c CatalogItem) SkillID() string {
	return fieldString(c, []string{"skill_id", "skillId", "skill"})
}

// Tag returns the primary matching tag for LRS events.
func (c CatalogItem) Tag() string { return fieldString(c, []string{"tag", "content_tag"}) }

// Tags returns every tag-like value on the row, lower-cased.
func (c CatalogItem) Tags() []string { return fieldStrings(c, tagFields) }

// Competencies returns every competency-like value on the row, lower-cased.
func (c CatalogItem) Competencies() []string { return fieldStrings(c, competencyFields) }

// ExpectedSkillLift returns the expected skill-lift fraction, defaulting to
// 0.2 when the feed omits it (the low end of the catalog's 0.18-0.30 range).
func (c CatalogItem) ExpectedSkillLift() float64 {
	for _, key := range []string{"expected_skill_lift", "expectedSkillLift", "expected_lift"} {
		if v, ok := c[key]; ok {
			if f, ok := anyToFloat(v); ok {
				return f
			}
		}
	}
	return 0.2
}

// PersonID returns the learner identifier on an LRS event, or "".
func (r ConsumptionRecord) PersonID() string { return fieldString(r, personIDFields) }

// ContentID returns the content identifier on an LRS event, or "".
func (r ConsumptionRecord) ContentID() string { return fieldString(r, contentIDFields) }

// ContentTag returns the content tag the event was recorded against.
func (r ConsumptionRecord) ContentTag() string {
	return fieldString(r, []string{"content_tag", "tag"})
}

// Consumed classifies the event: completed/passed status, progress >= 1, or
// any recorded minutes all count as consumption.
func (r ConsumptionRecord) Consumed() bool {
	status := strings.ToLower(fieldString(r, []string{"status", "state"}))
	if status == "" {
		if v, ok := r["completion"]; ok {
			if b, isBool := v.(bool); isBool && b {
				status = "completed"
			}
		}
	}
	if status == "completed" || status == "passed" {
		return true
	}
	for _, key := range []string{"progress", "completion"} {
		if v, ok := r[key]; ok {
			if f, isNum := anyToFloat(v); isNum && f >= 1 {
				return true
			}
		}
	}
	for _, key := range []string{"minutes", "duration_min", "duration"} {
		if v, ok := r[key]; ok {
			if f, isNum := anyToFloat(v); isNum && f > 0 {
				return true
			}
		}
	}
	return false
}
