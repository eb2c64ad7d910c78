package claims

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

type mockClaimRepo struct {
	unclaimed    []UnclaimedVisit
	claims       map[uuid.UUID]*InsuranceClaim
	byVisit      map[uuid.UUID]uuid.UUID
	order        []uuid.UUID
	transactions []*BillingTransaction
	denials      []*ClaimDenial
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{
		claims:  make(map[uuid.UUID]*InsuranceClaim),
		byVisit: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockClaimRepo) ListUnclaimedDischarges(ctx context.Context, limit int) ([]UnclaimedVisit, error) {
	var out []UnclaimedVisit
	for _, u := range m.unclaimed {
		if len(out) >= limit {
			break
		}
		if _, claimed := m.byVisit[u.VisitID]; !claimed {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) CreateClaim(ctx context.Context, c *InsuranceClaim) (bool, error) {
	if _, exists := m.byVisit[c.VisitID]; exists {
		return false, nil
	}
	c.ID = uuid.New()
	m.claims[c.ID] = c
	m.byVisit[c.VisitID] = c.ID
	m.order = append(m.order, c.ID)
	return true, nil
}

func (m *mockClaimRepo) CreateTransaction(ctx context.Context, t *BillingTransaction) error {
	t.ID = uuid.New()
	m.transactions = append(m.transactions, t)
	return nil
}

func (m *mockClaimRepo) ListOpen(ctx context.Context, limit int) ([]*InsuranceClaim, error) {
	var out []*InsuranceClaim
	for _, id := range m.order {
		if len(out) >= limit {
			break
		}
		c := m.claims[id]
		if c.Status == StatusSubmitted || c.Status == StatusPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) MarkPending(ctx context.Context, id uuid.UUID) (bool, error) {
	c, ok := m.claims[id]
	if !ok || c.Status != StatusSubmitted {
		return false, nil
	}
	c.Status = StatusPending
	return true, nil
}

func (m *mockClaimRepo) Resolve(ctx context.Context, id uuid.UUID, r Resolution) (bool, error) {
	c, ok := m.claims[id]
	if !ok || c.Status != StatusPending {
		return false, nil
	}
	c.Status = r.Status
	paid := r.PaidAmount
	c.PaidAmount = &paid
	date := r.ResolutionDate
	c.ResolutionDate = &date
	days := r.ProcessingTimeDays
	c.ProcessingTimeDays = &days
	return true, nil
}

func (m *mockClaimRepo) CreateDenial(ctx context.Context, d *ClaimDenial) error {
	d.ID = uuid.New()
	m.denials = append(m.denials, d)
	return nil
}

func discharges(n int) []UnclaimedVisit {
	out := make([]UnclaimedVisit, n)
	for i := range out {
		out[i] = UnclaimedVisit{VisitID: uuid.New(), PatientID: uuid.New()}
	}
	return out
}

func newTestPipeline(repo *mockClaimRepo, profile sim.Profile) *Pipeline {
	return NewPipeline(repo, db.NopRunner{}, sim.New(3), profile, zerolog.Nop())
}

func TestFileClaimsCreatesClaimAndCharge(t *testing.T) {
	repo := newMockClaimRepo()
	repo.unclaimed = discharges(4)
	p := newTestPipeline(repo, sim.Profile{})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Filed != 4 {
		t.Errorf("expected 4 claims filed, got %d", report.Filed)
	}
	if len(repo.transactions) != 4 {
		t.Fatalf("expected 4 charge transactions, got %d", len(repo.transactions))
	}
	for _, c := range repo.claims {
		if c.Status != StatusSubmitted {
			t.Errorf("new claim should be SUBMITTED, got %s", c.Status)
		}
		if !strings.HasPrefix(c.ClaimNumber, "CLM-") {
			t.Errorf("unexpected claim number %q", c.ClaimNumber)
		}
		if c.TotalAmount < 500 || c.TotalAmount > 25000 {
			t.Errorf("claim amount %v out of range", c.TotalAmount)
		}
		found := false
		for _, tr := range repo.transactions {
			if tr.VisitID == c.VisitID && tr.Amount == c.TotalAmount && tr.Type == TransactionCharge {
				found = true
			}
		}
		if !found {
			t.Errorf("claim %s has no matching charge transaction", c.ClaimNumber)
		}
	}
	for _, tr := range repo.transactions {
		if tr.Status != TransactionStatusBilled {
			t.Errorf("charge transaction should be BILLED, got %q", tr.Status)
		}
		if tr.Description == "" {
			t.Error("charge transaction should carry a description")
		}
	}
}

func TestFileClaimsBatchCap(t *testing.T) {
	repo := newMockClaimRepo()
	repo.unclaimed = discharges(30)
	p := newTestPipeline(repo, sim.Profile{})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Filed != creationBatchSize {
		t.Errorf("expected filing capped at %d, got %d", creationBatchSize, report.Filed)
	}
}

func TestFileClaimsSkipsAlreadyClaimedVisits(t *testing.T) {
	repo := newMockClaimRepo()
	repo.unclaimed = discharges(2)
	p := newTestPipeline(repo, sim.Profile{})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Filed != 0 {
		t.Errorf("second run should file nothing, got %d", report.Filed)
	}
	if len(repo.claims) != 2 {
		t.Errorf("expected one claim per visit, got %d", len(repo.claims))
	}
	if len(repo.transactions) != 2 {
		t.Errorf("expected one transaction per visit, got %d", len(repo.transactions))
	}
}

func TestAdjudicationStepsOneStatePerPass(t *testing.T) {
	repo := newMockClaimRepo()
	repo.unclaimed = discharges(1)
	// ClaimStep 1.0 advances every open claim each pass.
	p := newTestPipeline(repo, sim.Profile{ClaimStep: 1.0, ClaimApproval: 1.0})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Filed != 1 || report.Pended != 1 {
		t.Fatalf("expected file then pend in one pass, got %+v", report)
	}
	for _, c := range repo.claims {
		if c.Status != StatusPending {
			t.Errorf("claim should stop at PENDING after one pass, got %s", c.Status)
		}
	}

	report, err = p.Run(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if report.Approved != 1 {
		t.Errorf("expected approval on second pass, got %+v", report)
	}
}

func TestApprovalPaysWithinWindow(t *testing.T) {
	repo := newMockClaimRepo()
	claim := &InsuranceClaim{
		ClaimNumber: "CLM-TEST",
		VisitID:     uuid.New(),
		PatientID:   uuid.New(),
		TotalAmount: 10000,
		Status:      StatusPending,
		SubmittedAt: time.Now().Add(-72 * time.Hour),
	}
	if _, err := repo.CreateClaim(context.Background(), claim); err != nil {
		t.Fatalf("seeding claim: %v", err)
	}
	claim.Status = StatusPending
	p := newTestPipeline(repo, sim.Profile{ClaimStep: 1.0, ClaimApproval: 1.0})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claim.Status != StatusApproved {
		t.Fatalf("claim should be APPROVED, got %s", claim.Status)
	}
	if claim.PaidAmount == nil {
		t.Fatal("paid amount should be set")
	}
	if *claim.PaidAmount < 8000 || *claim.PaidAmount > 10000 {
		t.Errorf("paid amount should be 80-100%% of total, got %v", *claim.PaidAmount)
	}
	if claim.ProcessingTimeDays == nil {
		t.Fatal("processing time should be set")
	}
	// 72 hours elapsed plus test scheduling jitter still rounds to
	// exactly 3 days.
	if *claim.ProcessingTimeDays != 3 {
		t.Errorf("expected 3 processing days for a 72h old claim, got %d", *claim.ProcessingTimeDays)
	}
	if claim.ResolutionDate == nil {
		t.Error("resolution date should be set")
	}
}

func TestProcessingDaysRoundUpPartialDays(t *testing.T) {
	repo := newMockClaimRepo()
	claim := &InsuranceClaim{
		ClaimNumber: "CLM-TEST",
		VisitID:     uuid.New(),
		PatientID:   uuid.New(),
		TotalAmount: 1000,
		Status:      StatusPending,
		SubmittedAt: time.Now().Add(-100 * time.Hour),
	}
	if _, err := repo.CreateClaim(context.Background(), claim); err != nil {
		t.Fatalf("seeding claim: %v", err)
	}
	claim.Status = StatusPending
	p := newTestPipeline(repo, sim.Profile{ClaimStep: 1.0, ClaimApproval: 1.0})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claim.ProcessingTimeDays == nil {
		t.Fatal("processing time should be set")
	}
	if *claim.ProcessingTimeDays != 5 {
		t.Errorf("expected 100h to round up to 5 days, got %d", *claim.ProcessingTimeDays)
	}
}

func TestDenialWritesReasonAndZeroPayment(t *testing.T) {
	repo := newMockClaimRepo()
	claim := &InsuranceClaim{
		ClaimNumber: "CLM-TEST",
		VisitID:     uuid.New(),
		PatientID:   uuid.New(),
		TotalAmount: 5000,
		Status:      StatusPending,
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	if _, err := repo.CreateClaim(context.Background(), claim); err != nil {
		t.Fatalf("seeding claim: %v", err)
	}
	claim.Status = StatusPending
	// ClaimApproval 0 denies every resolved claim.
	p := newTestPipeline(repo, sim.Profile{ClaimStep: 1.0})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claim.Status != StatusDenied {
		t.Fatalf("claim should be DENIED, got %s", claim.Status)
	}
	if claim.PaidAmount == nil || *claim.PaidAmount != 0 {
		t.Error("denied claim should pay zero")
	}
	if claim.ProcessingTimeDays == nil {
		t.Fatal("processing time should be set")
	}
	if *claim.ProcessingTimeDays != 1 {
		t.Errorf("processing time should floor at 1 day, got %d", *claim.ProcessingTimeDays)
	}
	if len(repo.denials) != 1 {
		t.Fatalf("expected 1 denial record, got %d", len(repo.denials))
	}
	valid := false
	for _, r := range DenialReasons {
		if repo.denials[0].Reason == r {
			valid = true
		}
	}
	if !valid {
		t.Errorf("denial reason %q not in the known set", repo.denials[0].Reason)
	}
}
