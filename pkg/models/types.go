package models

import "fmt"

// Mode identifies the organizational function being analyzed.
// Every mode-dependent computation dispatches on this through an exhaustive
// switch, so adding a fourth function is a compile-visible change rather than
// a silently ignored default branch.
type Mode string

const (
	ModeSales      Mode = "Sales"
	ModeCS         Mode = "CS"
	ModeProduction Mode = "Production"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeSales, ModeCS, ModeProduction}

// ParseMode validates a mode string coming from a request.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSales, ModeCS, ModeProduction:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode: %q (want Sales, CS or Production)", s)
}

// OrgUnit returns the HRIS org_unit literal for the mode.
func (m Mode) OrgUnit() string {
	switch m {
	case ModeSales:
		return "Sales"
	case ModeCS:
		return "CS"
	case ModeProduction:
		return "Production"
	}
	return string(m)
}

// CohortType selects how a cohort is sliced out of the roster.
type CohortType string

const (
	CohortAll    CohortType = "All"
	CohortRegion CohortType = "Region"
	CohortPerson CohortType = "Person"
)

// Person is a single HRIS roster entry. Owned by the upstream HR extract;
// read-only here.
type Person struct {
	PersonID string `json:"person_id"`
	OrgUnit  string `json:"org_unit"`
	Region   string `json:"region"`
	Name     string `json:"name"`
}

// CompetencyConfig is one skill dimension of a mode's radar, as configured
// externally. Target is the 0-5 radar/gap target (typically 5). When the
// underlying raw metric lives on its own scale, CalFloor/CalTarget give the
// calibration interval for normalization; when omitted, Floor/Target double
// as the calibration bounds.
type CompetencyConfig struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Target         float64  `json:"target"`
	Floor          float64  `json:"floor"`
	CalFloor       *float64 `json:"cal_floor,omitempty"`
	CalTarget      *float64 `json:"cal_target,omitempty"`
	HigherIsBetter *bool    `json:"higher_is_better,omitempty"`
}

// Higher reports the direction flag, defaulting to true when the config file
// omits the field (matching `higher_is_better !== false` in the source data).
func (c CompetencyConfig) Higher() bool {
	return c.HigherIsBetter == nil || *c.HigherIsBetter
}

// Calibration returns the raw-metric interval used for normalization.
func (c CompetencyConfig) Calibration() (floor, target float64) {
	floor, target = c.Floor, c.Target
	if c.CalFloor != nil {
		floor = *c.CalFloor
	}
	if c.CalTarget != nil {
		target = *c.CalTarget
	}
	return floor, target
}

// CallRecord is one conversation-analytics row (gong.json). Pointer fields
// distinguish "absent from the extract" from a genuine zero; absent values
// fall back to the neutral defaults table.
type CallRecord struct {
	PersonID     string   `json:"person_id"`
	QuestionRate *float64 `json:"question_rate,omitempty"`
	TalkRatio    *float64 `json:"talk_ratio,omitempty"`
	Objections   *float64 `json:"objections,omitempty"`
	NextStep     *bool    `json:"next_step,omitempty"`
}

// DealRecord is one CRM opportunity row (crm.json).
type DealRecord struct {
	PersonID  string  `json:"person_id"`
	AccountID string  `json:"account_id"`
	Stage     string  `json:"stage,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
}

// ContentUsage is one content-usage event (cms.json).
type ContentUsage struct {
	PersonID  string `json:"person_id"`
	ContentID string `json:"content_id"`
}

// TicketRecord is one support/ops ticket row (support.json).
type TicketRecord struct {
	PersonID      string   `json:"person_id"`
	Severity      string   `json:"severity,omitempty"`
	ResolutionMin *float64 `json:"resolution_min,omitempty"`
	MTTRMin       *float64 `json:"mttr_min,omitempty"`
}

// TrainingRecord is one LMS completion row (lms_lrs.json).
type TrainingRecord struct {
	PersonID        string   `json:"person_id"`
	Status          string   `json:"status,omitempty"`
	AssessmentScore *float64 `json:"assessment_score,omitempty"`
}

// ScoreVector is an ordered 0-5 competency score sequence for a person or an
// averaged cohort, parallel to the mode's CompetencyConfig list.
type ScoreVector []float64

// GapEntry is one row of a gap analysis, gap = target - actual.
type GapEntry struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
	Gap    float64 `json:"gap"`
}

// CohortMember is one synthetic member of an influence sample. Skills are
// integer scores 1..5 per competency; KPI is the derived proxy, rescaled to
// the mode's presentation range.
type CohortMember struct {
	Skills []int   `json:"skills"`
	KPI    float64 `json:"kpi"`
}

// InfluenceScore reports the estimated statistical influence of one
// competency on the mode KPI.
type InfluenceScore struct {
	Index          int     `json:"index"`
	Label          string  `json:"label"`
	RawCorr        float64 `json:"raw_corr"`        // Pearson r in [-1,1]
	PValue         float64 `json:"p_value"`         // two-tailed
	SampleSize     int     `json:"sample_size"`
	Score0to5      float64 `json:"score0to5"`       // |r| scaled to 0..5, one decimal
	Interpretation string  `json:"interpretation"`
}

// ContentDriver is a catalog item scored by cohort usage x expected lift.
type ContentDriver struct {
	ContentID         string  `json:"content_id"`
	SkillID           string  `json:"skill_id"`
	Tag               string  `json:"tag"`
	ExpectedSkillLift float64 `json:"expected_skill_lift"`
	Used              int     `json:"used"`
	Driver            float64 `json:"driver"`
}

// ContentChoice is a catalog item proposed against a specific gap.
type ContentChoice struct {
	ContentID         string  `json:"content_id"`
	SkillID           string  `json:"skill_id"`
	Tag               string  `json:"tag"`
	ExpectedSkillLift float64 `json:"expected_skill_lift"`
	Used              int     `json:"used"`
	Priority          float64 `json:"priority"`
}

// GapContentSuggestion groups content choices under the gap they address.
type GapContentSuggestion struct {
	Skill string          `json:"skill"`
	Gap   float64         `json:"gap"`
	Items []ContentChoice `json:"items"`
}

// Recommendation is one ranked remediation action.
type Recommendation struct {
	ID                string  `json:"id"`
	Label             string  `json:"label"`
	Gap               float64 `json:"gap"`
	Influence         float64 `json:"influence"`
	Priority          float64 `json:"priority"`
	Title             string  `json:"title"`
	ExpectedSkillLift float64 `json:"expected_skill_lift"`
	EstCost           float64 `json:"est_cost"`
	ExpectedKpiLift   float64 `json:"expected_kpi_lift"`
}

// ROIResult is the annualized financial projection. All monetary fields are
// rounded to whole dollars, payback to one decimal month.
type ROIResult struct {
	TotalKpiLift  float64 `json:"total_kpi_lift"`
	UpsideAnnual  float64 `json:"upside_annual"`
	COIAnnual     float64 `json:"coi_annual"`
	NetAnnual     float64 `json:"net_annual"`
	ProgramCost   float64 `json:"program_cost"`
	PaybackMonths float64 `json:"payback_months"`
	ROIPercent    float64 `json:"roi_percent"`
}

// ContentHit is one semantic content-search result from the vector store.
type ContentHit struct {
	ContentID string  `json:"content_id"`
	SkillID   string  `json:"skill_id"`
	Mode      string  `json:"mode"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// ImportReport summarizes a workbook import.
type ImportReport struct {
	ReportID    string   `json:"report_id"`
	FileName    string   `json:"file_name"`
	Sheet       string   `json:"sheet,omitempty"`
	RowsRead    int      `json:"rows_read"`
	PeopleAdded int      `json:"people_added"`
	DealsAdded  int      `json:"deals_added"`
	Warnings    []string `json:"warnings,omitempty"`
}
