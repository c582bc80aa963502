package audit

import (
	"context"
	"errors"
	"time"

	"github.com/go-i2p/logger"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Report is the outcome of one Run.
type Report struct {
	ID        string
	StartedAt time.Time
	Findings  []*Failure
	Due       []Record
	Expired   []Record
	Pending   []Record
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Err joins all findings, nil when OK.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Findings))
	for i, f := range r.Findings {
		errs[i] = f
	}
	return errors.Join(errs...)
}

func (r *Report) add(err error) {
	if err == nil {
		return
	}
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{Kind: KindChain, Err: err}
	}
	r.Findings = append(r.Findings, f)
}

// Run performs every check on chain against a single reading of the clock
// and collects all failures. Cancelling ctx stops between checks and is
// recorded as a KindCancelled finding. A nil chain is audited as empty.
func (a *Auditor) Run(ctx context.Context, chain *Chain) *Report {
	if chain == nil {
		chain = &Chain{}
	}
	now := a.validator.Now()
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Unix(now, 0).UTC(),
	}
	log.WithFields(logger.Fields{
		"run_id":    report.ID,
		"epochs":    len(chain.Epochs),
		"key_lists": len(chain.KeyLists),
		"records":   len(chain.Records),
	}).Debug("Starting audit run")

	var steps []func() error
	steps = append(steps, func() error { return a.verifyEpochChain(chain.Epochs, now) })
	for _, ep := range chain.Epochs {
		ep := ep
		steps = append(steps, func() error { return a.verifyCertificate(ep, now) })
	}
	for _, skl := range chain.KeyLists {
		skl := skl
		steps = append(steps, func() error {
			ep, ok := chain.EpochFor(skl.MinEpochID)
			if !ok {
				return &Failure{Kind: KindObsolescence, Email: skl.Email,
					Err: oops.Errorf("no epoch at or after min epoch %d", skl.MinEpochID)}
			}
			return a.VerifyObsolescence(skl, ep)
		})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			report.add(&Failure{Kind: KindCancelled, Err: oops.Wrapf(err, "audit run %s", report.ID)})
			log.WithError(err).WithField("run_id", report.ID).Warn("Audit run cancelled")
			return report
		}
		report.add(step())
	}

	report.Due, report.Expired, report.Pending = a.partitionRecords(chain.Records, now)

	log.WithFields(logger.Fields{
		"run_id":   report.ID,
		"findings": len(report.Findings),
		"due":      len(report.Due),
		"expired":  len(report.Expired),
		"pending":  len(report.Pending),
	}).Info("Audit run finished")
	return report
}
