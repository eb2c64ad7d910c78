package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

var chiefComplaintsByDept = map[string][]string{
	catalog.DeptEmergency:  {"Chest pain", "Shortness of breath", "Abdominal pain", "Head injury", "Severe laceration"},
	catalog.DeptCardiology: {"Palpitations", "Chest tightness", "Syncope", "Leg swelling"},
	catalog.DeptOncology:   {"Fatigue and weight loss", "Scheduled chemotherapy", "Persistent cough", "Lymph node swelling"},
	catalog.DeptPediatrics: {"High fever", "Persistent vomiting", "Ear pain", "Wheezing"},
	catalog.DeptSurgery:    {"Acute appendicitis", "Gallbladder pain", "Hernia repair", "Post-operative follow-up"},
	catalog.DeptICU:        {"Respiratory failure", "Septic shock", "Post-cardiac arrest", "Multi-organ dysfunction"},
	catalog.DeptOrthopedic: {"Hip fracture", "Knee pain", "Back pain", "Shoulder dislocation"},
	catalog.DeptGeneral:    {"Uncontrolled diabetes", "Pneumonia", "Urinary tract infection", "Dehydration"},
}

var genericComplaints = []string{"General malaise", "Follow-up evaluation", "Acute pain"}

var primaryDiagnoses = []string{
	"Acute myocardial infarction", "Community-acquired pneumonia", "Type 2 diabetes mellitus",
	"Congestive heart failure", "Acute appendicitis", "Urinary tract infection",
	"Chronic obstructive pulmonary disease", "Sepsis", "Femoral neck fracture",
	"Acute pancreatitis", "Cellulitis", "Gastroenteritis",
}

var secondaryDiagnoses = []string{
	"Essential hypertension", "Hyperlipidemia", "Obesity", "Anemia",
	"Chronic kidney disease", "Atrial fibrillation", "Hypothyroidism",
}

var medicationPool = []string{
	"Lisinopril 10mg", "Metformin 500mg", "Atorvastatin 20mg", "Aspirin 81mg",
	"Ceftriaxone 1g IV", "Morphine 2mg IV", "Ondansetron 4mg", "Heparin 5000u SC",
	"Albuterol inhaler", "Furosemide 40mg", "Pantoprazole 40mg", "Insulin glargine",
}

var visitTypes = []string{TypeEmergency, TypeInpatient, TypeInpatient, TypeOutpatient}

// Report summarizes one visit generation pass.
type Report struct {
	Discharged      int `json:"discharged"`
	Admitted        int `json:"admitted"`
	HistoricalAdded int `json:"historical_added"`
	Errors          int `json:"errors"`
}

// Generator maintains the active visit census around a target by
// discharging a fraction of active visits and admitting new ones.
type Generator struct {
	visits      VisitRepository
	patients    PatientRepository
	beds        resources.BedRepository
	departments catalog.DepartmentRepository
	runner      db.TxRunner
	rnd         *sim.Rand
	profile     sim.Profile
	logger      zerolog.Logger
	target      int
}

func NewGenerator(visits VisitRepository, patients PatientRepository, beds resources.BedRepository, departments catalog.DepartmentRepository, runner db.TxRunner, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger, target int) *Generator {
	return &Generator{
		visits:      visits,
		patients:    patients,
		beds:        beds,
		departments: departments,
		runner:      runner,
		rnd:         rnd,
		profile:     profile,
		logger:      logger.With().Str("component", "visits").Logger(),
		target:      target,
	}
}

func (g *Generator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	patientCount, err := g.patients.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("counting patients: %w", err)
	}
	if patientCount == 0 {
		g.logger.Warn().Msg("no patients found, skipping visit generation")
		return report, nil
	}

	departments, err := g.departments.List(ctx)
	if err != nil {
		return report, fmt.Errorf("listing departments: %w", err)
	}
	if len(departments) == 0 {
		g.logger.Warn().Msg("no departments found, skipping visit generation")
		return report, nil
	}

	if err := g.dischargePass(ctx, report); err != nil {
		return report, err
	}
	if err := g.admissionPass(ctx, departments, report); err != nil {
		return report, err
	}
	return report, nil
}

// dischargePass closes a random fraction of active visits, freeing the
// bed in the same transaction.
func (g *Generator) dischargePass(ctx context.Context, report *Report) error {
	active, err := g.visits.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("listing active visits: %w", err)
	}

	now := time.Now()
	for _, v := range active {
		if !g.rnd.Chance(g.profile.VisitDischarge) {
			continue
		}
		visit := v
		err := g.runner.InTx(ctx, func(ctx context.Context) error {
			ok, err := g.visits.Discharge(ctx, visit.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				// Already discharged by a concurrent pass.
				return nil
			}
			if visit.BedID != nil {
				if _, err := g.beds.UpdateStatus(ctx, *visit.BedID, resources.BedStatusOccupied, resources.BedStatusAvailable, nil); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			g.logger.Error().Err(err).Str("visit", visit.VisitNumber).Msg("discharge failed")
			report.Errors++
			continue
		}
		report.Discharged++
	}
	return nil
}

// admissionPass admits new visits until the active census reaches the
// target. Some candidates instead produce an already-discharged
// historical visit, which does not count toward the census.
func (g *Generator) admissionPass(ctx context.Context, departments []*catalog.Department, report *Report) error {
	active, err := g.visits.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("counting active visits: %w", err)
	}
	deficit := g.target - active
	if deficit <= 0 {
		return nil
	}

	// Extra candidates cover the ones that turn into historical visits.
	candidates, err := g.patients.ListIDsWithoutActiveVisit(ctx, deficit*2)
	if err != nil {
		return fmt.Errorf("listing admission candidates: %w", err)
	}

	admitted := 0
	for _, patientID := range candidates {
		if admitted >= deficit {
			break
		}
		dept := departments[g.rnd.Intn(len(departments))]

		if g.rnd.Chance(g.profile.VisitDischarge) {
			if err := g.createHistoricalVisit(ctx, patientID, dept); err != nil {
				g.logger.Error().Err(err).Msg("historical visit failed")
				report.Errors++
				continue
			}
			report.HistoricalAdded++
			continue
		}

		if err := g.admit(ctx, patientID, dept); err != nil {
			g.logger.Error().Err(err).Msg("admission failed")
			report.Errors++
			continue
		}
		admitted++
	}
	report.Admitted = admitted
	return nil
}

// admit occupies an available bed and opens an ACTIVE visit in one
// transaction. When the department has no free bed the visit is
// admitted without one.
func (g *Generator) admit(ctx context.Context, patientID uuid.UUID, dept *catalog.Department) error {
	return g.runner.InTx(ctx, func(ctx context.Context) error {
		var bedID *uuid.UUID
		available, err := g.beds.ListAvailableByDepartment(ctx, dept.ID)
		if err != nil {
			return err
		}
		for _, bed := range available {
			ok, err := g.beds.UpdateStatus(ctx, bed.ID, resources.BedStatusAvailable, resources.BedStatusOccupied, &patientID)
			if err != nil {
				return err
			}
			if ok {
				id := bed.ID
				bedID = &id
				break
			}
		}

		visit := g.synthesize(patientID, dept)
		visit.BedID = bedID
		visit.Status = StatusActive
		visit.AdmittedAt = g.rnd.DaysAgo(1, 14)
		return g.visits.Create(ctx, visit)
	})
}

// createHistoricalVisit records a past encounter that is already
// discharged and never held a bed.
func (g *Generator) createHistoricalVisit(ctx context.Context, patientID uuid.UUID, dept *catalog.Department) error {
	visit := g.synthesize(patientID, dept)
	visit.Status = StatusDischarged
	visit.AdmittedAt = g.rnd.DaysAgo(7, 90)
	discharged := g.rnd.Between(visit.AdmittedAt, visit.AdmittedAt.AddDate(0, 0, 10))
	visit.DischargedAt = &discharged
	return g.visits.Create(ctx, visit)
}

func (g *Generator) synthesize(patientID uuid.UUID, dept *catalog.Department) *Visit {
	complaints, ok := chiefComplaintsByDept[dept.Type]
	if !ok {
		complaints = genericComplaints
	}

	diagnosis := Diagnosis{Primary: g.rnd.Pick(primaryDiagnoses)}
	if g.rnd.Chance(0.5) {
		diagnosis.Secondary = []string{g.rnd.Pick(secondaryDiagnoses)}
	}

	meds := make([]string, 0, 3)
	for i := g.rnd.IntBetween(1, 3); i > 0; i-- {
		meds = append(meds, g.rnd.Pick(medicationPool))
	}

	return &Visit{
		VisitNumber:    newVisitNumber(),
		PatientID:      patientID,
		DepartmentID:   dept.ID,
		VisitType:      g.rnd.Pick(visitTypes),
		ChiefComplaint: g.rnd.Pick(complaints),
		Diagnosis:      diagnosis,
		VitalSigns: VitalSigns{
			Temperature:      g.rnd.FloatBetween(36.1, 39.5),
			HeartRate:        g.rnd.IntBetween(55, 130),
			RespiratoryRate:  g.rnd.IntBetween(12, 28),
			SystolicBP:       g.rnd.IntBetween(95, 180),
			DiastolicBP:      g.rnd.IntBetween(55, 110),
			OxygenSaturation: g.rnd.IntBetween(88, 100),
		},
		Medications: meds,
	}
}

func newVisitNumber() string {
	return "V-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
