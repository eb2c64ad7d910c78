package visits

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

type mockVisitRepo struct {
	visits map[uuid.UUID]*Visit
	order  []uuid.UUID
}

func newMockVisitRepo() *mockVisitRepo {
	return &mockVisitRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (m *mockVisitRepo) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, v := range m.visits {
		if v.Status == StatusActive {
			n++
		}
	}
	return n, nil
}

func (m *mockVisitRepo) ListActive(ctx context.Context) ([]*Visit, error) {
	var out []*Visit
	for _, id := range m.order {
		if m.visits[id].Status == StatusActive {
			out = append(out, m.visits[id])
		}
	}
	return out, nil
}

func (m *mockVisitRepo) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	m.visits[v.ID] = v
	m.order = append(m.order, v.ID)
	return nil
}

func (m *mockVisitRepo) Discharge(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	v, ok := m.visits[id]
	if !ok || v.Status != StatusActive {
		return false, nil
	}
	v.Status = StatusDischarged
	v.DischargedAt = &at
	return true, nil
}

func (m *mockVisitRepo) DischargeByBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int, error) {
	n := 0
	for _, v := range m.visits {
		if v.Status == StatusActive && v.BedID != nil && *v.BedID == bedID {
			v.Status = StatusDischarged
			v.DischargedAt = &at
			n++
		}
	}
	return n, nil
}

type mockPatientRepo struct {
	ids    []uuid.UUID
	visits *mockVisitRepo
}

func (m *mockPatientRepo) Count(ctx context.Context) (int, error) { return len(m.ids), nil }

func (m *mockPatientRepo) ListIDsWithoutActiveVisit(ctx context.Context, limit int) ([]uuid.UUID, error) {
	busy := make(map[uuid.UUID]bool)
	if m.visits != nil {
		for _, v := range m.visits.visits {
			if v.Status == StatusActive {
				busy[v.PatientID] = true
			}
		}
	}
	var out []uuid.UUID
	for _, id := range m.ids {
		if len(out) >= limit {
			break
		}
		if !busy[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type mockBedRepo struct {
	beds  map[uuid.UUID]*resources.Bed
	order []uuid.UUID
}

func newMockBedRepo() *mockBedRepo {
	return &mockBedRepo{beds: make(map[uuid.UUID]*resources.Bed)}
}

func (m *mockBedRepo) add(departmentID uuid.UUID, status string) *resources.Bed {
	b := &resources.Bed{ID: uuid.New(), DepartmentID: departmentID, Status: status}
	m.beds[b.ID] = b
	m.order = append(m.order, b.ID)
	return b
}

func (m *mockBedRepo) Count(ctx context.Context) (int, error) { return len(m.beds), nil }

func (m *mockBedRepo) DeleteAll(ctx context.Context) error {
	m.beds = make(map[uuid.UUID]*resources.Bed)
	m.order = nil
	return nil
}

func (m *mockBedRepo) Create(ctx context.Context, b *resources.Bed) error {
	b.ID = uuid.New()
	m.beds[b.ID] = b
	m.order = append(m.order, b.ID)
	return nil
}

func (m *mockBedRepo) List(ctx context.Context) ([]*resources.Bed, error) {
	var out []*resources.Bed
	for _, id := range m.order {
		out = append(out, m.beds[id])
	}
	return out, nil
}

func (m *mockBedRepo) ListByStatus(ctx context.Context, status string) ([]*resources.Bed, error) {
	var out []*resources.Bed
	for _, id := range m.order {
		if m.beds[id].Status == status {
			out = append(out, m.beds[id])
		}
	}
	return out, nil
}

func (m *mockBedRepo) ListAvailableByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*resources.Bed, error) {
	var out []*resources.Bed
	for _, id := range m.order {
		b := m.beds[id]
		if b.DepartmentID == departmentID && b.Status == resources.BedStatusAvailable {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBedRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, patientID *uuid.UUID) (bool, error) {
	b, ok := m.beds[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.PatientID = patientID
	return true, nil
}

type mockDeptRepo struct {
	departments []*catalog.Department
}

func (m *mockDeptRepo) Count(ctx context.Context) (int, error) { return len(m.departments), nil }

func (m *mockDeptRepo) Create(ctx context.Context, d *catalog.Department) error {
	d.ID = uuid.New()
	m.departments = append(m.departments, d)
	return nil
}

func (m *mockDeptRepo) List(ctx context.Context) ([]*catalog.Department, error) {
	return m.departments, nil
}

func patientPool(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func twoDepartments() *mockDeptRepo {
	return &mockDeptRepo{departments: []*catalog.Department{
		{ID: uuid.New(), Code: "EMERG", Type: catalog.DeptEmergency},
		{ID: uuid.New(), Code: "GENMED", Type: catalog.DeptGeneral},
	}}
}

func newTestGenerator(visits *mockVisitRepo, patients *mockPatientRepo, beds *mockBedRepo, depts *mockDeptRepo, profile sim.Profile, target int) *Generator {
	return NewGenerator(visits, patients, beds, depts, db.NopRunner{}, sim.New(11), profile, zerolog.Nop(), target)
}

func TestRunSkipsWithoutPatients(t *testing.T) {
	visits := newMockVisitRepo()
	gen := newTestGenerator(visits, &mockPatientRepo{}, newMockBedRepo(), twoDepartments(), sim.DefaultProfile(), 40)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Admitted != 0 || len(visits.visits) != 0 {
		t.Errorf("expected no visits without patients, got %d", len(visits.visits))
	}
}

func TestRunAdmitsUpToTarget(t *testing.T) {
	visits := newMockVisitRepo()
	patients := &mockPatientRepo{ids: patientPool(100), visits: visits}
	depts := twoDepartments()
	beds := newMockBedRepo()
	for i := 0; i < 20; i++ {
		beds.add(depts.departments[i%2].ID, resources.BedStatusAvailable)
	}
	// VisitDischarge 0 keeps every candidate on the admission path.
	gen := newTestGenerator(visits, patients, beds, depts, sim.Profile{}, 10)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Admitted != 10 {
		t.Errorf("expected 10 admissions, got %d", report.Admitted)
	}
	active, _ := visits.CountActive(context.Background())
	if active != 10 {
		t.Errorf("expected 10 active visits, got %d", active)
	}
}

func TestRunDoesNotExceedTarget(t *testing.T) {
	visits := newMockVisitRepo()
	depts := twoDepartments()
	for i := 0; i < 12; i++ {
		v := &Visit{PatientID: uuid.New(), DepartmentID: depts.departments[0].ID, Status: StatusActive}
		if err := visits.Create(context.Background(), v); err != nil {
			t.Fatalf("seeding visit: %v", err)
		}
	}
	patients := &mockPatientRepo{ids: patientPool(50), visits: visits}
	gen := newTestGenerator(visits, patients, newMockBedRepo(), depts, sim.Profile{}, 10)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Admitted != 0 {
		t.Errorf("census above target should admit nobody, got %d", report.Admitted)
	}
}

func TestDischargeFreesBed(t *testing.T) {
	visits := newMockVisitRepo()
	depts := twoDepartments()
	beds := newMockBedRepo()
	patientID := uuid.New()
	bed := beds.add(depts.departments[0].ID, resources.BedStatusOccupied)
	bed.PatientID = &patientID
	v := &Visit{PatientID: patientID, DepartmentID: depts.departments[0].ID, BedID: &bed.ID, Status: StatusActive}
	if err := visits.Create(context.Background(), v); err != nil {
		t.Fatalf("seeding visit: %v", err)
	}
	patients := &mockPatientRepo{ids: []uuid.UUID{patientID}, visits: visits}
	// VisitDischarge 1.0 forces the discharge; target 0 blocks re-admission.
	gen := newTestGenerator(visits, patients, beds, depts, sim.Profile{VisitDischarge: 1.0}, 0)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Discharged != 1 {
		t.Errorf("expected 1 discharge, got %d", report.Discharged)
	}
	if visits.visits[v.ID].Status != StatusDischarged {
		t.Error("visit should be DISCHARGED")
	}
	if visits.visits[v.ID].DischargedAt == nil {
		t.Error("discharged_at should be set")
	}
	if beds.beds[bed.ID].Status != resources.BedStatusAvailable {
		t.Errorf("bed should be freed, got %s", beds.beds[bed.ID].Status)
	}
}

func TestAdmissionOccupiesBedForPatient(t *testing.T) {
	visits := newMockVisitRepo()
	depts := &mockDeptRepo{departments: []*catalog.Department{
		{ID: uuid.New(), Code: "EMERG", Type: catalog.DeptEmergency},
	}}
	beds := newMockBedRepo()
	beds.add(depts.departments[0].ID, resources.BedStatusAvailable)
	patients := &mockPatientRepo{ids: patientPool(1), visits: visits}
	gen := newTestGenerator(visits, patients, beds, depts, sim.Profile{}, 1)

	if _, err := gen.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range visits.visits {
		if v.BedID == nil {
			t.Fatal("visit should hold the available bed")
		}
		b := beds.beds[*v.BedID]
		if b.Status != resources.BedStatusOccupied {
			t.Errorf("bed should be OCCUPIED, got %s", b.Status)
		}
		if b.PatientID == nil || *b.PatientID != v.PatientID {
			t.Error("bed patient_id should match the admitted patient")
		}
	}
}

func TestAdmissionWithoutFreeBed(t *testing.T) {
	visits := newMockVisitRepo()
	depts := &mockDeptRepo{departments: []*catalog.Department{
		{ID: uuid.New(), Code: "GENMED", Type: catalog.DeptGeneral},
	}}
	patients := &mockPatientRepo{ids: patientPool(3), visits: visits}
	gen := newTestGenerator(visits, patients, newMockBedRepo(), depts, sim.Profile{}, 3)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Admitted != 3 {
		t.Errorf("expected 3 admissions, got %d", report.Admitted)
	}
	for _, v := range visits.visits {
		if v.BedID != nil {
			t.Error("no beds exist, visits should admit without one")
		}
		if v.Status != StatusActive {
			t.Errorf("visit should be ACTIVE, got %s", v.Status)
		}
	}
}

func TestSynthesizedVisitShape(t *testing.T) {
	visits := newMockVisitRepo()
	depts := twoDepartments()
	patients := &mockPatientRepo{ids: patientPool(20), visits: visits}
	gen := newTestGenerator(visits, patients, newMockBedRepo(), depts, sim.Profile{}, 20)

	if _, err := gen.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range visits.visits {
		if !strings.HasPrefix(v.VisitNumber, "V-") || len(v.VisitNumber) != 12 {
			t.Errorf("unexpected visit number %q", v.VisitNumber)
		}
		if v.ChiefComplaint == "" || v.Diagnosis.Primary == "" {
			t.Errorf("visit %s missing complaint or diagnosis", v.VisitNumber)
		}
		if n := len(v.Medications); n < 1 || n > 3 {
			t.Errorf("visit %s has %d medications, want 1..3", v.VisitNumber, n)
		}
		vs := v.VitalSigns
		if vs.Temperature < 36.1 || vs.Temperature > 39.5 {
			t.Errorf("temperature %v out of range", vs.Temperature)
		}
		if vs.OxygenSaturation < 88 || vs.OxygenSaturation > 100 {
			t.Errorf("oxygen saturation %d out of range", vs.OxygenSaturation)
		}
		// Admissions land 1 to 14 days back, plus sub-day jitter.
		if v.AdmittedAt.After(time.Now().AddDate(0, 0, -1)) {
			t.Error("admitted_at should be at least one day back")
		}
		if v.AdmittedAt.Before(time.Now().AddDate(0, 0, -16)) {
			t.Errorf("admitted_at %v too far in the past", v.AdmittedAt)
		}
	}
}

func TestHistoricalVisitsAreDischargedWithoutBed(t *testing.T) {
	visits := newMockVisitRepo()
	depts := twoDepartments()
	patients := &mockPatientRepo{ids: patientPool(40), visits: visits}
	// VisitDischarge 1.0 turns every admission candidate into history.
	gen := newTestGenerator(visits, patients, newMockBedRepo(), depts, sim.Profile{VisitDischarge: 1.0}, 5)

	report, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Admitted != 0 {
		t.Errorf("expected no live admissions, got %d", report.Admitted)
	}
	if report.HistoricalAdded == 0 {
		t.Fatal("expected historical visits")
	}
	for _, v := range visits.visits {
		if v.Status != StatusDischarged {
			t.Errorf("historical visit should be DISCHARGED, got %s", v.Status)
		}
		if v.BedID != nil {
			t.Error("historical visit should not hold a bed")
		}
		if v.DischargedAt == nil || v.DischargedAt.Before(v.AdmittedAt) {
			t.Error("discharged_at should be set and after admitted_at")
		}
	}
}
