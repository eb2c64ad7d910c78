package claims

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

const (
	creationBatchSize     = 10
	adjudicationBatchSize = 20
)

var insurers = []string{
	"Aetna",
	"UnitedHealthcare",
	"Blue Cross Blue Shield",
	"Cigna",
	"Humana",
	"Medicare",
}

// Report summarizes one claims pass.
type Report struct {
	Filed    int `json:"filed"`
	Pended   int `json:"pended"`
	Approved int `json:"approved"`
	Denied   int `json:"denied"`
	Errors   int `json:"errors"`
}

// Pipeline files claims for discharged visits and adjudicates open
// claims in bounded batches.
type Pipeline struct {
	claims  ClaimRepository
	runner  db.TxRunner
	rnd     *sim.Rand
	profile sim.Profile
	logger  zerolog.Logger
}

func NewPipeline(claims ClaimRepository, runner db.TxRunner, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		claims:  claims,
		runner:  runner,
		rnd:     rnd,
		profile: profile,
		logger:  logger.With().Str("component", "claims").Logger(),
	}
}

func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := p.fileClaims(ctx, report); err != nil {
		return report, err
	}
	if err := p.adjudicate(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// fileClaims files one claim per unclaimed discharged visit, together
// with its charge transaction, in a single transaction. The unique
// visit constraint makes filing safe to race.
func (p *Pipeline) fileClaims(ctx context.Context, report *Report) error {
	unclaimed, err := p.claims.ListUnclaimedDischarges(ctx, creationBatchSize)
	if err != nil {
		return fmt.Errorf("listing unclaimed discharges: %w", err)
	}

	now := time.Now()
	for _, visit := range unclaimed {
		amount := p.rnd.FloatBetween(500, 25000)
		claim := &InsuranceClaim{
			ClaimNumber:       newClaimNumber(),
			VisitID:           visit.VisitID,
			PatientID:         visit.PatientID,
			InsuranceProvider: p.rnd.Pick(insurers),
			TotalAmount:       math.Round(amount*100) / 100,
			Status:            StatusSubmitted,
			SubmittedAt:       now,
		}
		err := p.runner.InTx(ctx, func(ctx context.Context) error {
			inserted, err := p.claims.CreateClaim(ctx, claim)
			if err != nil {
				return err
			}
			if !inserted {
				// Another filer claimed this visit first.
				return nil
			}
			report.Filed++
			return p.claims.CreateTransaction(ctx, &BillingTransaction{
				VisitID:     visit.VisitID,
				PatientID:   visit.PatientID,
				Type:        TransactionCharge,
				Status:      TransactionStatusBilled,
				Description: "Hospital services for claim " + claim.ClaimNumber,
				Amount:      claim.TotalAmount,
			})
		})
		if err != nil {
			p.logger.Error().Err(err).Str("visit", visit.VisitID.String()).Msg("claim filing failed")
			report.Errors++
		}
	}
	return nil
}

// adjudicate moves a random fraction of open claims one step forward.
func (p *Pipeline) adjudicate(ctx context.Context, report *Report) error {
	open, err := p.claims.ListOpen(ctx, adjudicationBatchSize)
	if err != nil {
		return fmt.Errorf("listing open claims: %w", err)
	}

	now := time.Now()
	for _, claim := range open {
		if !p.rnd.Chance(p.profile.ClaimStep) {
			continue
		}
		switch claim.Status {
		case StatusSubmitted:
			ok, err := p.claims.MarkPending(ctx, claim.ID)
			if err != nil {
				p.logger.Error().Err(err).Str("claim", claim.ClaimNumber).Msg("pending transition failed")
				report.Errors++
				continue
			}
			if ok {
				report.Pended++
			}
		case StatusPending:
			if err := p.resolve(ctx, claim, now, report); err != nil {
				p.logger.Error().Err(err).Str("claim", claim.ClaimNumber).Msg("resolution failed")
				report.Errors++
			}
		}
	}
	return nil
}

// resolve approves or denies a pending claim. Denials write the claim
// update and the denial record in one transaction.
func (p *Pipeline) resolve(ctx context.Context, claim *InsuranceClaim, now time.Time, report *Report) error {
	// Minute granularity keeps sub-minute clock skew from tipping the
	// day ceiling for claims submitted on an exact day boundary.
	elapsed := now.Sub(claim.SubmittedAt).Round(time.Minute)
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 1 {
		days = 1
	}
	res := Resolution{
		ResolutionDate:     now,
		ProcessingTimeDays: days,
	}

	if p.rnd.Chance(p.profile.ClaimApproval) {
		res.Status = StatusApproved
		res.PaidAmount = math.Round(claim.TotalAmount*p.rnd.FloatBetween(0.8, 1.0)*100) / 100
		ok, err := p.claims.Resolve(ctx, claim.ID, res)
		if err != nil {
			return err
		}
		if ok {
			report.Approved++
		}
		return nil
	}

	res.Status = StatusDenied
	res.PaidAmount = 0
	return p.runner.InTx(ctx, func(ctx context.Context) error {
		ok, err := p.claims.Resolve(ctx, claim.ID, res)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		report.Denied++
		reason := p.rnd.Pick(DenialReasons)
		return p.claims.CreateDenial(ctx, &ClaimDenial{
			ClaimID: claim.ID,
			Reason:  reason,
			Notes:   "Denied by payer review: " + strings.ReplaceAll(strings.ToLower(reason), "_", " "),
		})
	})
}

func newClaimNumber() string {
	return "CLM-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
