package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Snapshot is one point-in-time view of every raw extract the analytics read.
// All derived entities are pure functions of a snapshot plus explicit request
// inputs, so a snapshot is never mutated after load.
type Snapshot struct {
	People       []models.Person
	Calls        []models.CallRecord
	Deals        []models.DealRecord
	ContentUsage []models.ContentUsage
	Tickets      []models.TicketRecord
	Trainings    []models.TrainingRecord
	LRSEvents    []models.ConsumptionRecord
	Catalog      []models.CatalogItem
	Competencies map[models.Mode][]models.CompetencyConfig
}

// CompetenciesFor returns the configured competency list for a mode, falling
// back to the built-in defaults when no config file was loaded.
func (s *Snapshot) CompetenciesFor(mode models.Mode) []models.CompetencyConfig {
	if s != nil && s.Competencies != nil {
		if cfg, ok := s.Competencies[mode]; ok && len(cfg) > 0 {
			return cfg
		}
	}
	return DefaultCompetencies(mode)
}

// CallsFor returns the conversation records for one person.
func (s *Snapshot) CallsFor(personID string) []models.CallRecord {
	var out []models.CallRecord
	for _, r := range s.Calls {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out
}

// DealsFor returns the CRM records for one person.
func (s *Snapshot) DealsFor(personID string) []models.DealRecord {
	var out []models.DealRecord
	for _, r := range s.Deals {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out
}

// ContentUsageFor returns the content-usage events for one person.
func (s *Snapshot) ContentUsageFor(personID string) []models.ContentUsage {
	var out []models.ContentUsage
	for _, r := range s.ContentUsage {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out
}

// TicketsFor returns the support/ops tickets owned by one person.
func (s *Snapshot) TicketsFor(personID string) []models.TicketRecord {
	var out []models.TicketRecord
	for _, r := range s.Tickets {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out
}

// TrainingsFor returns the LMS rows for one person.
func (s *Snapshot) TrainingsFor(personID string) []models.TrainingRecord {
	var out []models.TrainingRecord
	for _, r := range s.Trainings {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out
}

// CatalogForMode filters the content catalog to one mode.
func (s *Snapshot) CatalogForMode(mode models.Mode) []models.CatalogItem {
	var out []models.CatalogItem
	for _, c := range s.Catalog {
		if c.Mode() == string(mode) {
			out = append(out, c)
		}
	}
	return out
}

// DatasetService loads and caches the JSON snapshot from a data directory,
// merges workbook imports into it, and hands immutable snapshots to the
// analytics. Missing optional files degrade to empty collections; only the
// roster is required.
type DatasetService struct {
	mu      sync.RWMutex
	dataDir string
	snap    *Snapshot
}

// NewDatasetService creates a DatasetService rooted at dataDir.
func NewDatasetService(dataDir string) *DatasetService {
	return &DatasetService{dataDir: dataDir}
}

// Snapshot returns the current snapshot, loading the data directory on first
// use. A failed load yields an empty snapshot rather than nil so callers can
// always compute (and get the documented empty-cohort placeholders).
func (s *DatasetService) Snapshot() *Snapshot {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap
	}
	if err := s.Reload(); err != nil {
		log.Printf("⚠️ dataset load failed, continuing with empty snapshot: %v", err)
		s.mu.Lock()
		if s.snap == nil {
			s.snap = &Snapshot{}
		}
		snap = s.snap
		s.mu.Unlock()
		return snap
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetSnapshot replaces the cached snapshot. Used by tests and imports.
func (s *DatasetService) SetSnapshot(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Reload re-reads every data file from the data directory.
func (s *DatasetService) Reload() error {
	snap := &Snapshot{Competencies: map[models.Mode][]models.CompetencyConfig{}}

	if err := s.readJSON("hris.json", &snap.People); err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	// Optional extracts: absence is normal, a parse error is worth a warning.
	s.readOptional("gong.json", &snap.Calls)
	s.readOptional("crm.json", &snap.Deals)
	s.readOptional("cms.json", &snap.ContentUsage)
	s.readOptional("support.json", &snap.Tickets)
	s.readOptional("lms_lrs.json", &snap.Trainings)
	s.readOptional("lrs.json", &snap.LRSEvents)
	s.readOptional("content_catalog.json", &snap.Catalog)

	configFiles := map[models.Mode]string{
		models.ModeSales:      filepath.Join("config", "competencies", "sales.json"),
		models.ModeCS:         filepath.Join("config", "competencies", "cs.json"),
		models.ModeProduction: filepath.Join("config", "competencies", "prod.json"),
	}
	for mode, path := range configFiles {
		var cfg []models.CompetencyConfig
		s.readOptional(path, &cfg)
		if len(cfg) > 0 {
			snap.Competencies[mode] = cfg
		}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	log.Printf("✅ dataset loaded: %d people, %d calls, %d deals, %d tickets, %d LRS events, %d catalog items",
		len(snap.People), len(snap.Calls), len(snap.Deals), len(snap.Tickets), len(snap.LRSEvents), len(snap.Catalog))
	return nil
}

func (s *DatasetService) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *DatasetService) readOptional(name string, out any) {
	err := s.readJSON(name, out)
	if err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ skipping %s: %v", name, err)
	}
}

// Ordered header candidates for workbook imports; first match wins.
var (
	importPersonCols  = []string{"person_id", "employee_id", "id"}
	importOrgUnitCols = []string{"org_unit", "department", "function", "team"}
	importRegionCols  = []string{"region", "territory", "location"}
	importNameCols    = []string{"name", "full_name", "employee_name"}
	importAccountCols = []string{"account_id", "account", "customer_id"}
	importAmountCols  = []string{"amount", "deal_size", "value"}
	importStageCols   = []string{"stage", "deal_stage", "status"}
)

// ImportWorkbook merges rows of an uploaded .xlsx or .csv roster/CRM export
// into the current snapshot. Header names are resolved through the ordered
// candidate lists above; rows without a person id are skipped with a warning
// in the report.
func (s *DatasetService) ImportWorkbook(file io.Reader, fileName string) (*models.ImportReport, error) {
	report := &models.ImportReport{
		ReportID: uuid.New().String(),
		FileName: fileName,
	}

	var rows [][]string
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		report.Sheet = sheet
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
	case strings.HasSuffix(lower, ".csv"):
		var err error
		rows, err = csv.NewReader(file).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file type: %s (want .xlsx or .csv)", fileName)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("file needs a header row and at least one data row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	personIdx := findIndex(header, importPersonCols...)
	if personIdx < 0 {
		return nil, fmt.Errorf("no person id column found (tried %s)", strings.Join(importPersonCols, ", "))
	}
	orgIdx := findIndex(header, importOrgUnitCols...)
	regionIdx := findIndex(header, importRegionCols...)
	nameIdx := findIndex(header, importNameCols...)
	accountIdx := findIndex(header, importAccountCols...)
	amountIdx := findIndex(header, importAmountCols...)
	stageIdx := findIndex(header, importStageCols...)

	base := s.Snapshot()
	next := *base // shallow copy; slices below are re-assigned, never mutated
	known := make(map[string]struct{}, len(base.People))
	for _, p := range base.People {
		known[p.PersonID] = struct{}{}
	}

	for i, row := range rows[1:] {
		report.RowsRead++
		pid := cell(row, personIdx)
		if pid == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("row %d: missing person id, skipped", i+2))
			continue
		}
		if accountIdx >= 0 {
			deal := models.DealRecord{
				PersonID:  pid,
				AccountID: cell(row, accountIdx),
				Stage:     cell(row, stageIdx),
			}
			if amountIdx >= 0 {
				fmt.Sscanf(strings.ReplaceAll(cell(row, amountIdx), ",", ""), "%f", &deal.Amount)
			}
			next.Deals = append(next.Deals, deal)
			report.DealsAdded++
			continue
		}
		if _, exists := known[pid]; exists {
			continue
		}
		next.People = append(next.People, models.Person{
			PersonID: pid,
			OrgUnit:  cell(row, orgIdx),
			Region:   cell(row, regionIdx),
			Name:     cell(row, nameIdx),
		})
		known[pid] = struct{}{}
		report.PeopleAdded++
	}

	s.SetSnapshot(&next)
	log.Printf("📊 import %s: %d rows, %d people, %d deals", fileName, report.RowsRead, report.PeopleAdded, report.DealsAdded)
	return report, nil
}

// findIndex returns the index of the first header candidate present in the
// slice, or -1.
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(item, candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
