package documents

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type scoreInput struct {
	req     Request
	signals Signals
	now     time.Time
}

type scorer func(in scoreInput) (*AnalysisResult, error)

var scorers = map[DocumentType]scorer{
	TypeTaxNotice:          scoreTaxNotice,
	TypePayslip:            scorePayslip,
	TypeIdentity:           scoreIdentity,
	TypeBankStatement:      scoreBankStatement,
	TypeEmploymentContract: scoreEmploymentContract,
}

// containsFold reports whether text contains any of subs, ignoring case and
// accents. subs must already be folded.
func containsFold(text string, subs ...string) bool {
	if text == "" {
		return false
	}
	return containsAny(fold(text), subs...)
}

// Analyzer routes a document to its scorer. Safe for concurrent use as long
// as its collaborators are.
type Analyzer struct {
	Signals SignalSource
	Policy  AutoValidator
	Clock   Clock
}

// Analyze always returns a verdict. A non-nil error means the verdict is the
// degraded one (score 0) and explains why.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (res *AnalysisResult, err error) {
	t, known := ParseType(req.DocumentType)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
			res = Degraded(t, err)
		}
	}()

	if !known {
		res = scoreGeneric(t)
	} else {
		sig, ierr := a.Signals.Inspect(ctx, req)
		if ierr != nil {
			err = fmt.Errorf("inspect document: %w", ierr)
			return Degraded(t, err), err
		}
		now := a.now()
		res, err = scorers[t](scoreInput{req: req, signals: sig, now: now})
		if err != nil {
			err = fmt.Errorf("score %s: %w", t, err)
			return Degraded(t, err), err
		}
		if sig.Source != "" {
			res.ExtractedData["signalSource"] = sig.Source
		}
		if res.NeedsUpdate && res.NextUpdateDate == nil {
			res.NextUpdateDate = &now
		}
	}

	if a.Policy != nil {
		ok, perr := a.Policy.AutoValidate(ctx, res)
		// evaluation failures keep the document in manual review
		res.AutoValidated = ok && perr == nil
	}
	return res, nil
}

func (a *Analyzer) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock.Now()
}

// Degraded is the verdict returned when a document could not be analysed.
func Degraded(t DocumentType, cause error) *AnalysisResult {
	res := newResult(t)
	res.fail("Document analysis failed: " + cause.Error())
	res.recommend("Retry later or submit the document for manual review")
	return res
}

// MinScorePolicy auto-validates error-free verdicts at or above MinScore.
type MinScorePolicy struct {
	MinScore int
}

func (p MinScorePolicy) AutoValidate(_ context.Context, r *AnalysisResult) (bool, error) {
	return r.ConfidenceScore >= p.MinScore && len(r.Errors) == 0, nil
}

// IsDegraded reports whether r came from Degraded.
func IsDegraded(r *AnalysisResult) bool {
	return r.ConfidenceScore == 0 && len(r.Errors) == 1 && strings.HasPrefix(r.Errors[0], "Document analysis failed: ")
}
