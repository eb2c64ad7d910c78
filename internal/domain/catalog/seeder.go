package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/sim"
)

// Targets holds the minimum row counts the seeder maintains per
// reference table. Tables at or above their target are left untouched.
type Targets struct {
	Departments        int
	TestTypes          int
	CriticalValues     int
	Indicators         int
	Accreditations     int
	ComplianceAreas    int
	RiskAssessments    int
	Initiatives        int
	EducationMaterials int
}

func DefaultTargets() Targets {
	return Targets{
		Departments:        8,
		TestTypes:          10,
		CriticalValues:     4,
		Indicators:         8,
		Accreditations:     3,
		ComplianceAreas:    5,
		RiskAssessments:    5,
		Initiatives:        4,
		EducationMaterials: 6,
	}
}

// SeedReport summarizes one seeder pass.
type SeedReport struct {
	Created map[string]int `json:"created"`
	Errors  []string       `json:"errors,omitempty"`
}

type Seeder struct {
	departments DepartmentRepository
	labCatalog  LabCatalogRepository
	quality     QualityCatalogRepository
	rnd         *sim.Rand
	logger      zerolog.Logger
	targets     Targets
}

func NewSeeder(departments DepartmentRepository, labCatalog LabCatalogRepository, quality QualityCatalogRepository, rnd *sim.Rand, logger zerolog.Logger, targets Targets) *Seeder {
	return &Seeder{
		departments: departments,
		labCatalog:  labCatalog,
		quality:     quality,
		rnd:         rnd,
		logger:      logger.With().Str("component", "seeder").Logger(),
		targets:     targets,
	}
}

type departmentSeed struct {
	name     string
	code     string
	deptType string
}

var departmentSeeds = []departmentSeed{
	{"Emergency Department", "EMERG", DeptEmergency},
	{"Cardiology", "CARD", DeptCardiology},
	{"Oncology", "ONCO", DeptOncology},
	{"Pediatrics", "PEDS", DeptPediatrics},
	{"General Surgery", "SURG", DeptSurgery},
	{"Intensive Care Unit", "ICU", DeptICU},
	{"Orthopedics", "ORTHO", DeptOrthopedic},
	{"General Medicine", "GENMED", DeptGeneral},
}

type testTypeSeed struct {
	name     string
	code     string
	category string
	low      *float64
	high     *float64
	unit     string
}

func f(v float64) *float64 { return &v }

var testTypeSeeds = []testTypeSeed{
	{"Hemoglobin", "HGB", "HEMATOLOGY", f(12.0), f(16.0), "g/dL"},
	{"White Blood Cell Count", "WBC", "HEMATOLOGY", f(4.0), f(11.0), "10^9/L"},
	{"Platelet Count", "PLT", "HEMATOLOGY", f(150), f(400), "10^9/L"},
	{"Glucose", "GLU", "CHEMISTRY", f(70), f(100), "mg/dL"},
	{"Potassium", "K", "CHEMISTRY", f(3.5), f(5.0), "mmol/L"},
	{"Sodium", "NA", "CHEMISTRY", f(135), f(145), "mmol/L"},
	{"Creatinine", "CREA", "CHEMISTRY", f(0.6), f(1.2), "mg/dL"},
	{"Troponin I", "TROP", "CARDIAC", f(0.0), f(0.04), "ng/mL"},
	{"Thyroid Stimulating Hormone", "TSH", "ENDOCRINE", f(0.4), f(4.0), "mIU/L"},
	{"COVID-19 PCR", "COVID", "MICROBIOLOGY", nil, nil, ""},
}

type criticalSeed struct {
	testCode    string
	low         *float64
	high        *float64
	description string
}

var criticalSeeds = []criticalSeed{
	{"K", f(2.5), f(6.0), "Severe potassium derangement, risk of cardiac arrhythmia"},
	{"GLU", f(40), f(500), "Severe hypo- or hyperglycemia"},
	{"NA", f(120), f(160), "Severe sodium derangement, neurologic risk"},
	{"TROP", nil, f(0.5), "Markedly elevated troponin, possible myocardial infarction"},
}

type indicatorSeed struct {
	name     string
	category string
	target   float64
	unit     string
}

var indicatorSeeds = []indicatorSeed{
	{"Hand Hygiene Compliance", "SAFETY", 95, "%"},
	{"Patient Satisfaction Score", "EXPERIENCE", 4.2, "score"},
	{"30-Day Readmission Rate", "OUTCOMES", 12, "%"},
	{"Average Length of Stay", "EFFICIENCY", 4.5, "days"},
	{"Medication Error Rate", "SAFETY", 2, "per 1000 doses"},
	{"Falls per 1000 Patient Days", "SAFETY", 3, "per 1000 days"},
	{"Hospital Acquired Infection Rate", "SAFETY", 1.5, "%"},
	{"Door-to-Doctor Time", "EFFICIENCY", 30, "minutes"},
}

var accreditationSeeds = []Accreditation{
	{Body: "Joint Commission", Program: "Hospital Accreditation", Status: "ACCREDITED"},
	{Body: "CAP", Program: "Laboratory Accreditation", Status: "ACCREDITED"},
	{Body: "ACR", Program: "Radiology Accreditation", Status: "IN_PROGRESS"},
}

var complianceSeeds = []string{
	"Infection Control",
	"Medication Management",
	"Patient Rights",
	"Emergency Preparedness",
	"Information Security",
}

type riskSeed struct {
	area       string
	severity   string
	likelihood string
	plan       string
}

var riskSeeds = []riskSeed{
	{"Patient Falls", "HIGH", "MEDIUM", "Hourly rounding and bed alarms on high-risk units"},
	{"Medication Errors", "HIGH", "LOW", "Barcode medication administration at every station"},
	{"Hospital Acquired Infections", "MEDIUM", "MEDIUM", "Hand hygiene audits and isolation protocols"},
	{"Staff Shortages", "MEDIUM", "HIGH", "Float pool expansion and cross-training"},
	{"Equipment Failure", "LOW", "MEDIUM", "Preventive maintenance schedule for critical devices"},
}

type initiativeSeed struct {
	title  string
	status string
	owner  string
}

var initiativeSeeds = []initiativeSeed{
	{"Reduce ED Boarding Time", "ACTIVE", "Emergency Department"},
	{"Sepsis Early Recognition Bundle", "ACTIVE", "Quality Office"},
	{"Discharge Before Noon", "PLANNED", "Care Management"},
	{"Pressure Injury Prevention", "COMPLETED", "Nursing"},
}

type materialSeed struct {
	title  string
	topic  string
	format string
}

var materialSeeds = []materialSeed{
	{"Managing Your Diabetes", "DIABETES", "BROCHURE"},
	{"Heart Failure Home Care", "CARDIOLOGY", "VIDEO"},
	{"Post-Surgical Wound Care", "SURGERY", "HANDOUT"},
	{"Understanding Your Medications", "PHARMACY", "BROCHURE"},
	{"Fall Prevention at Home", "SAFETY", "HANDOUT"},
	{"Smoking Cessation Resources", "WELLNESS", "VIDEO"},
}

// Run tops up every reference table to its target count. A failure in
// one table is recorded and does not stop the remaining tables.
func (s *Seeder) Run(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{Created: make(map[string]int)}

	s.seedTable(ctx, report, "department", s.targets.Departments, s.departments.Count, func(ctx context.Context, i int) error {
		seed := departmentSeeds[i%len(departmentSeeds)]
		return s.departments.Create(ctx, &Department{Name: seed.name, Code: seed.code, Type: seed.deptType})
	})

	s.seedTable(ctx, report, "lab_test_type", s.targets.TestTypes, s.labCatalog.CountTestTypes, func(ctx context.Context, i int) error {
		seed := testTypeSeeds[i%len(testTypeSeeds)]
		return s.labCatalog.CreateTestType(ctx, &LabTestType{
			Name:               seed.name,
			Code:               seed.code,
			Category:           seed.category,
			ReferenceRangeLow:  seed.low,
			ReferenceRangeHigh: seed.high,
			Unit:               seed.unit,
		})
	})

	s.seedTable(ctx, report, "critical_lab_value", s.targets.CriticalValues, s.labCatalog.CountCriticalValues, func(ctx context.Context, i int) error {
		seed := criticalSeeds[i%len(criticalSeeds)]
		tt, err := s.labCatalog.GetTestTypeByCode(ctx, seed.testCode)
		if err != nil {
			s.logger.Warn().Str("test_code", seed.testCode).Err(err).
				Msg("skipping critical value, test type not found")
			return nil
		}
		return s.labCatalog.CreateCriticalValue(ctx, &CriticalLabValue{
			TestTypeID:   tt.ID,
			CriticalLow:  seed.low,
			CriticalHigh: seed.high,
			Description:  seed.description,
		})
	})

	s.seedTable(ctx, report, "quality_indicator", s.targets.Indicators, s.quality.CountIndicators, func(ctx context.Context, i int) error {
		seed := indicatorSeeds[i%len(indicatorSeeds)]
		return s.quality.CreateIndicator(ctx, &QualityIndicator{
			Name:        seed.name,
			Category:    seed.category,
			TargetValue: seed.target,
			Unit:        seed.unit,
		})
	})

	s.seedTable(ctx, report, "accreditation", s.targets.Accreditations, s.quality.CountAccreditations, func(ctx context.Context, i int) error {
		seed := accreditationSeeds[i%len(accreditationSeeds)]
		return s.quality.CreateAccreditation(ctx, &Accreditation{
			Body:       seed.Body,
			Program:    seed.Program,
			Status:     seed.Status,
			ValidUntil: time.Now().AddDate(s.rnd.IntBetween(1, 3), 0, 0),
		})
	})

	s.seedTable(ctx, report, "compliance_area", s.targets.ComplianceAreas, s.quality.CountComplianceAreas, func(ctx context.Context, i int) error {
		name := complianceSeeds[i%len(complianceSeeds)]
		return s.quality.CreateComplianceArea(ctx, &ComplianceArea{
			Name:          name,
			Score:         s.rnd.FloatBetween(75, 100),
			LastAuditDate: s.rnd.DaysAgo(30, 365),
		})
	})

	s.seedTable(ctx, report, "risk_assessment", s.targets.RiskAssessments, s.quality.CountRiskAssessments, func(ctx context.Context, i int) error {
		seed := riskSeeds[i%len(riskSeeds)]
		return s.quality.CreateRiskAssessment(ctx, &RiskAssessment{
			Area:           seed.area,
			Severity:       seed.severity,
			Likelihood:     seed.likelihood,
			MitigationPlan: seed.plan,
		})
	})

	s.seedTable(ctx, report, "quality_improvement_initiative", s.targets.Initiatives, s.quality.CountInitiatives, func(ctx context.Context, i int) error {
		seed := initiativeSeeds[i%len(initiativeSeeds)]
		return s.quality.CreateInitiative(ctx, &QualityImprovementInitiative{
			Title:     seed.title,
			Status:    seed.status,
			StartDate: s.rnd.DaysAgo(30, 180),
			Owner:     seed.owner,
		})
	})

	s.seedTable(ctx, report, "education_material", s.targets.EducationMaterials, s.quality.CountEducationMaterials, func(ctx context.Context, i int) error {
		seed := materialSeeds[i%len(materialSeeds)]
		return s.quality.CreateEducationMaterial(ctx, &EducationMaterial{
			Title:  seed.title,
			Topic:  seed.topic,
			Format: seed.format,
		})
	})

	return report, nil
}

func (s *Seeder) seedTable(ctx context.Context, report *SeedReport, table string, target int, count func(context.Context) (int, error), create func(context.Context, int) error) {
	existing, err := count(ctx)
	if err != nil {
		msg := fmt.Sprintf("%s: count failed: %v", table, err)
		s.logger.Error().Str("table", table).Err(err).Msg("seed count failed")
		report.Errors = append(report.Errors, msg)
		return
	}
	for i := existing; i < target; i++ {
		if err := create(ctx, i); err != nil {
			msg := fmt.Sprintf("%s: create failed: %v", table, err)
			s.logger.Error().Str("table", table).Err(err).Msg("seed create failed")
			report.Errors = append(report.Errors, msg)
			return
		}
		report.Created[table]++
	}
	if n := report.Created[table]; n > 0 {
		s.logger.Info().Str("table", table).Int("created", n).Msg("seeded reference rows")
	}
}
