package audit

import (
	"math"

	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util/time/skew"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// Auditor runs timing checks against a trusted clock.
type Auditor struct {
	validator *epoch.Validator
	maxSkew   int64
}

// NewAuditor returns an Auditor using v for the current time and thresholds.
// maxSkew (seconds) bounds how far in the future a server timestamp may be;
// non-positive values fall back to skew.MaxClockSkew.
func NewAuditor(v *epoch.Validator, maxSkew int64) *Auditor {
	if maxSkew <= 0 {
		maxSkew = skew.MaxClockSkew
	}
	return &Auditor{validator: v, maxSkew: maxSkew}
}

func (a *Auditor) maxInterval() int64 {
	return a.validator.Thresholds().MaxEpochInterval
}

// VerifyEpochChain checks ordering and cadence of epochs and the freshness
// of the newest one. It returns the first *Failure found.
func (a *Auditor) VerifyEpochChain(epochs []Epoch) error {
	return a.verifyEpochChain(epochs, a.validator.Now())
}

func (a *Auditor) verifyEpochChain(epochs []Epoch, now int64) error {
	if len(epochs) == 0 {
		return &Failure{Kind: KindChain, Err: oops.Errorf("empty epoch chain")}
	}
	max := a.maxInterval()

	for i := 1; i < len(epochs); i++ {
		prev, ep := epochs[i-1], epochs[i]
		if ep.ID <= prev.ID {
			return &Failure{Kind: KindChain, EpochID: ep.ID,
				Err: oops.Errorf("epoch id does not increase after %d", prev.ID)}
		}
		if ep.Timestamp < prev.Timestamp {
			return &Failure{Kind: KindChain, EpochID: ep.ID,
				Err: oops.Errorf("timestamp %d precedes epoch %d at %d", ep.Timestamp, prev.ID, prev.Timestamp)}
		}
		if epoch.IsTooOldRelativeTo(prev.Timestamp, ep.Timestamp, max) {
			return &Failure{Kind: KindChain, EpochID: ep.ID,
				Err: oops.Errorf("published %ds after epoch %d, max interval %ds", ep.Timestamp-prev.Timestamp, prev.ID, max)}
		}
	}

	latest := epochs[len(epochs)-1]
	if err := skew.ValidateNotFuture(latest.Timestamp, now, a.maxSkew); err != nil {
		return &Failure{Kind: KindSkew, EpochID: latest.ID, Err: err}
	}
	if epoch.IsTooOld(latest.Timestamp, now, max) {
		log.WithFields(logger.Fields{
			"epoch":     latest.ID,
			"timestamp": latest.Timestamp,
			"now":       now,
			"max":       max,
		}).Warn("Newest epoch is stale")
		return &Failure{Kind: KindStale, EpochID: latest.ID,
			Err: oops.Errorf("newest epoch is %ds old, max %ds", now-latest.Timestamp, max)}
	}
	return nil
}

// VerifyCertificate checks that ep's certificate covers ep, was issued
// around it and has not passed the staleness cutoff.
func (a *Auditor) VerifyCertificate(ep Epoch) error {
	return a.verifyCertificate(ep, a.validator.Now())
}

func (a *Auditor) verifyCertificate(ep Epoch, now int64) error {
	cert := ep.Certificate
	fail := func(err error) error {
		return &Failure{Kind: KindCertificate, EpochID: ep.ID, Err: err}
	}

	if cert.IsZero() {
		return fail(oops.Errorf("no certificate"))
	}
	if cert.NotBefore > cert.NotAfter {
		return fail(oops.Errorf("not_before %d is after not_after %d", cert.NotBefore, cert.NotAfter))
	}
	if !epoch.IsWithinDoubleRange(ep.Timestamp, cert.NotBefore, cert.NotAfter) {
		return fail(oops.Errorf("epoch timestamp %d outside certificate validity [%d, %d]",
			ep.Timestamp, cert.NotBefore, cert.NotAfter))
	}
	if !epoch.IsWithinSingleRange(cert.IssuedAt, ep.Timestamp, a.maxInterval()) {
		return fail(oops.Errorf("certificate issued at %d, more than %ds from epoch timestamp %d",
			cert.IssuedAt, a.maxInterval(), ep.Timestamp))
	}
	if epoch.IsOlderThanStalenessThreshold(cert.NotBefore, now) {
		return fail(oops.Errorf("certificate not_before %d is past the staleness cutoff %d",
			cert.NotBefore, epoch.StalenessCutoff(now)))
	}
	return nil
}

// VerifyObsolescence checks the obsolescence token of skl, if any, against
// ep. Malformed tokens produce a Failure wrapping *epoch.ParseError.
func (a *Auditor) VerifyObsolescence(skl SignedKeyList, ep Epoch) error {
	if skl.ObsolescenceToken == "" {
		return nil
	}
	fail := func(err error) error {
		return &Failure{Kind: KindObsolescence, EpochID: ep.ID, Email: skl.Email, Err: err}
	}

	ts, err := epoch.ParseObsolescenceTimestamp(skl.ObsolescenceToken)
	if err != nil {
		return fail(err)
	}
	if ts > math.MaxInt64 {
		return fail(oops.Errorf("obsolescence timestamp %d is not a plausible time", ts))
	}
	obsolete := int64(ts)

	if err := skew.ValidateNotFuture(obsolete, ep.Timestamp, a.maxSkew); err != nil {
		return fail(oops.Wrapf(err, "obsolescence timestamp after epoch"))
	}
	if epoch.IsTooOldRelativeTo(obsolete, ep.Timestamp, a.maxInterval()) {
		return fail(oops.Errorf("obsolescence timestamp %d is more than %ds before epoch timestamp %d",
			obsolete, a.maxInterval(), ep.Timestamp))
	}
	return nil
}

// PartitionRecords splits records into those due for audit, those past the
// staleness cutoff and not due, and the rest. Input order is preserved.
func (a *Auditor) PartitionRecords(records []Record) (due, expired, pending []Record) {
	return a.partitionRecords(records, a.validator.Now())
}

func (a *Auditor) partitionRecords(records []Record, now int64) (due, expired, pending []Record) {
	window := a.validator.Thresholds().AuditWindow
	for _, r := range records {
		switch {
		case epoch.IsOldEnoughForAudit(r.Timestamp, now, window):
			due = append(due, r)
		case epoch.IsOlderThanStalenessThreshold(r.Timestamp, now):
			expired = append(expired, r)
		default:
			pending = append(pending, r)
		}
	}
	return due, expired, pending
}
