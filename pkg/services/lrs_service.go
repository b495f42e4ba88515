package services

import (
	"math"
	"sort"
	"strings"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// LRSService turns learning-record-store events and the content catalog into
// utilization, leverage and content-recommendation figures for a cohort.
type LRSService struct{}

// NewLRSService creates a new LRSService.
func NewLRSService() *LRSService {
	return &LRSService{}
}

// Soft cap on content touches per skill: five consumed items count as full
// utilization.
const utilizationCap = 5

// Leverage display clamp. Even an unused skill shows a faint (0.8) point and
// a saturated one tops out at 4.0 so the radar target ring stays readable.
const (
	leverageFloor = 0.8
	leverageCeil  = 4.0
)

// UtilizationForPerson maps each catalog skill to this person's 0-1 content
// utilization: consumed events matched to catalog entries for the skill,
// divided by the soft cap.
func (s *LRSService) UtilizationForPerson(mode models.Mode, personID string, snap *Snapshot) map[string]float64 {
	cat := snap.CatalogForMode(mode)
	counts := map[string]int{}
	for _, ev := range snap.LRSEvents {
		if ev.PersonID() != personID || !ev.Consumed() {
			continue
		}
		if hit := matchCatalogItem(cat, ev); hit != nil {
			counts[hit.SkillID()]++
		}
	}

	out := map[string]float64{}
	for _, c := range cat {
		skill := c.SkillID()
		out[skill] = clamp(float64(counts[skill])/utilizationCap, 0, 1)
	}
	return out
}

// LeverageForCohort scores each catalog skill 0-5 by how much training
// consumption plausibly explains attainment: cohort-average utilization on a
// concave curve (so low usage still registers), boosted by the strongest
// available content's expected lift, clamped into the display range.
func (s *LRSService) LeverageForCohort(mode models.Mode, cohortIDs []string, snap *Snapshot) map[string]float64 {
	cat := snap.CatalogForMode(mode)

	var skills []string
	seen := map[string]struct{}{}
	for _, c := range cat {
		if skill := c.SkillID(); skill != "" {
			if _, ok := seen[skill]; !ok {
				seen[skill] = struct{}{}
				skills = append(skills, skill)
			}
		}
	}

	utilByPerson := make(map[string]map[string]float64, len(cohortIDs))
	for _, pid := range cohortIDs {
		utilByPerson[pid] = s.UtilizationForPerson(mode, pid, snap)
	}

	leverage := map[string]float64{}
	for _, skill := range skills {
		vals := make([]float64, 0, len(cohortIDs))
		for _, pid := range cohortIDs {
			vals = append(vals, utilByPerson[pid][skill])
		}
		utilAvg := avgOr(vals, 0)

		liftBest := 0.0
		for _, c := range cat {
			if c.SkillID() == skill && c.ExpectedSkillLift() > liftBest {
				liftBest = c.ExpectedSkillLift()
			}
		}
		if liftBest == 0 {
			liftBest = 0.2
		}

		utilScaled := math.Pow(utilAvg, 0.6)
		liftScaled := 0.7 + liftBest*0.9
		score := clamp(utilScaled*liftScaled*5, leverageFloor, leverageCeil)
		leverage[skill] = round1(score)
	}

	// Every displayed skill gets a key even with zero cohort usage.
	for _, c := range cat {
		skill := c.SkillID()
		if skill == "" {
			continue
		}
		if _, ok := leverage[skill]; !ok {
			leverage[skill] = 1.0
		}
	}
	return leverage
}

// TopContentDrivers ranks catalog items by cohort usage x expected lift.
func (s *LRSService) TopContentDrivers(mode models.Mode, cohortIDs []string, snap *Snapshot, topN int) []models.ContentDriver {
	cat := snap.CatalogForMode(mode)
	inCohort := toSet(cohortIDs)

	counts := map[string]int{}
	for _, ev := range snap.LRSEvents {
		if _, ok := inCohort[ev.PersonID()]; !ok || !ev.Consumed() {
			continue
		}
		if hit := matchCatalogItem(cat, ev); hit != nil {
			counts[hit.ContentID()]++
		}
	}

	scored := make([]models.ContentDriver, 0, len(cat))
	for _, c := range cat {
		used := counts[c.ContentID()]
		scored = append(scored, models.ContentDriver{
			ContentID:         c.ContentID(),
			SkillID:           c.SkillID(),
			Tag:               c.Tag(),
			ExpectedSkillLift: c.ExpectedSkillLift(),
			Used:              used,
			Driver:            round2(float64(used) * c.ExpectedSkillLift()),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Driver > scored[j].Driver })
	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// RecommendContentForGaps proposes, for each of the top three gaps, the best
// catalog items that are not yet saturated: priority grows with the gap and
// the expected lift, and shrinks as cohort usage approaches the soft cap.
func (s *LRSService) RecommendContentForGaps(mode models.Mode, gaps []models.GapEntry, cohortIDs []string, snap *Snapshot, perGap int) []models.GapContentSuggestion {
	cat := snap.CatalogForMode(mode)
	inCohort := toSet(cohortIDs)

	usedByTag := map[string]int{}
	for _, ev := range snap.LRSEvents {
		if _, ok := inCohort[ev.PersonID()]; !ok || !ev.Consumed() {
			continue
		}
		if tag := ev.ContentTag(); tag != "" {
			usedByTag[tag]++
		}
	}

	if len(gaps) > 3 {
		gaps = gaps[:3]
	}
	out := make([]models.GapContentSuggestion, 0, len(gaps))
	for _, g := range gaps {
		var choices []models.ContentChoice
		for _, c := range cat {
			if c.SkillID() != g.ID {
				continue
			}
			used := usedByTag[c.Tag()]
			saturation := math.Min(1, float64(used)/utilizationCap)
			choices = append(choices, models.ContentChoice{
				ContentID:         c.ContentID(),
				SkillID:           c.SkillID(),
				Tag:               c.Tag(),
				ExpectedSkillLift: c.ExpectedSkillLift(),
				Used:              used,
				Priority:          math.Max(0, g.Gap) * (1 - saturation) * (0.5 + c.ExpectedSkillLift()),
			})
		}
		sort.SliceStable(choices, func(i, j int) bool { return choices[i].Priority > choices[j].Priority })
		if perGap > 0 && len(choices) > perGap {
			choices = choices[:perGap]
		}
		out = append(out, models.GapContentSuggestion{Skill: g.Label, Gap: g.Gap, Items: choices})
	}
	return out
}

// CoverageOverlay computes the 0-5 enablement overlay point per competency:
// the cohort-average share of related catalog content each person has
// consumed. Competencies with no related content score 0.
func (s *LRSService) CoverageOverlay(mode models.Mode, config []models.CompetencyConfig, cohortIDs []string, snap *Snapshot) []float64 {
	consumedByPerson := map[string]map[string]struct{}{}
	for _, ev := range snap.LRSEvents {
		pid := ev.PersonID()
		cid := ev.ContentID()
		if pid == "" || cid == "" || !ev.Consumed() {
			continue
		}
		if consumedByPerson[pid] == nil {
			consumedByPerson[pid] = map[string]struct{}{}
		}
		consumedByPerson[pid][cid] = struct{}{}
	}

	cat := snap.CatalogForMode(mode)
	out := make([]float64, len(config))
	for i, c := range config {
		related := relatedContentForMetric(cat, strings.ToLower(c.ID), strings.ToLower(c.Label))
		if len(related) == 0 {
			continue
		}
		var shares []float64
		for _, pid := range cohortIDs {
			set := consumedByPerson[pid]
			var cnt int
			for _, cid := range related {
				if _, ok := set[cid]; ok {
					cnt++
				}
			}
			shares = append(shares, float64(cnt)/float64(len(related)))
		}
		out[i] = clamp(avgOr(shares, 0)*5, 0, 5)
	}
	return out
}

// matchCatalogItem resolves an LRS event to a catalog entry: exact tag match
// first, then content-id match when the event carries no usable tag.
func matchCatalogItem(cat []models.CatalogItem, ev models.ConsumptionRecord) models.CatalogItem {
	if tag := ev.ContentTag(); tag != "" {
		for _, c := range cat {
			if c.Tag() == tag {
				return c
			}
		}
	}
	if cid := ev.ContentID(); cid != "" {
		for _, c := range cat {
			if c.ContentID() == cid {
				return c
			}
		}
	}
	return nil
}

// metricAliases expands a metric id into the lenient spellings seen across
// feeds (e.g. demo_accuracy_rate matches demo_accuracy).
func metricAliases(metricID string) map[string]struct{} {
	aliases := map[string]struct{}{metricID: {}}
	if v, ok := strings.CutSuffix(metricID, "_rate"); ok {
		aliases[v] = struct{}{}
	}
	if v, ok := strings.CutSuffix(metricID, "_days"); ok {
		aliases[v] = struct{}{}
	}
	fixed := map[string]string{
		"demo_accuracy_rate":       "demo_accuracy",
		"customer_sentiment_score": "sentiment",
		"sales_stage_velocity":     "stage_velocity_days",
	}
	if v, ok := fixed[metricID]; ok {
		aliases[v] = struct{}{}
	}
	return aliases
}

// relatedContentForMetric finds catalog content ids related to a metric.
// Preference order: a tag-like field matching a metric alias, then a
// competency match on untagged rows, then any competency match at all.
func relatedContentForMetric(cat []models.CatalogItem, metricID, competency string) []string {
	aliases := metricAliases(metricID)
	seen := map[string]struct{}{}
	var ids []string
	add := func(cid string) {
		if _, ok := seen[cid]; !ok {
			seen[cid] = struct{}{}
			ids = append(ids, cid)
		}
	}

	for _, row := range cat {
		cid := row.ContentID()
		if cid == "" {
			continue
		}
		tags := row.Tags()
		var tagHit bool
		for _, t := range tags {
			if _, ok := aliases[t]; ok {
				tagHit = true
				break
			}
		}
		if tagHit {
			add(cid)
			continue
		}
		if len(tags) == 0 && containsString(row.Competencies(), competency) {
			add(cid)
		}
	}
	if len(ids) == 0 {
		for _, row := range cat {
			cid := row.ContentID()
			if cid != "" && containsString(row.Competencies(), competency) {
				add(cid)
			}
		}
	}
	return ids
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
