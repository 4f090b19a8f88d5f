package narrative

// Band is a qualitative performance level derived from a numeric average.
type Band string

const (
	BandExcellent         Band = "Excellent"
	BandVerySatisfactory  Band = "Very satisfactory"
	BandSatisfactory      Band = "Satisfactory"
	BandBelowSatisfactory Band = "Below satisfactory"
	BandNeedsImprovement  Band = "Needs improvement"
)

// Thresholds holds the band breakpoints. The defaults mirror the evaluation
// rubric in production; they are tunable through configuration rather than
// hard-coded at call sites.
type Thresholds struct {
	Excellent         float64 `json:"excellent" koanf:"excellent"`
	VerySatisfactory  float64 `json:"very_satisfactory" koanf:"very_satisfactory"`
	Satisfactory      float64 `json:"satisfactory" koanf:"satisfactory"`
	BelowSatisfactory float64 `json:"below_satisfactory" koanf:"below_satisfactory"`
}

// DefaultThresholds returns the standard rubric breakpoints.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Excellent:         4.6,
		VerySatisfactory:  3.6,
		Satisfactory:      2.9,
		BelowSatisfactory: 1.8,
	}
}

// Band maps a numeric average to its qualitative level. Negative or absent
// averages land in the lowest band.
func (t Thresholds) Band(x float64) Band {
	switch {
	case x >= t.Excellent:
		return BandExcellent
	case x >= t.VerySatisfactory:
		return BandVerySatisfactory
	case x >= t.Satisfactory:
		return BandSatisfactory
	case x >= t.BelowSatisfactory:
		return BandBelowSatisfactory
	default:
		return BandNeedsImprovement
	}
}

func domainAverage(avg Averages, d Domain) float64 {
	switch d {
	case DomainCommunication:
		return avg.Communications
	case DomainManagement:
		return avg.Management
	case DomainAssessment:
		return avg.Assessment
	default:
		return 0
	}
}

// StrongestDomain returns the sub-domain with the highest average. Ties go to
// the first domain in declared order (communication, management, assessment).
func StrongestDomain(avg Averages) Domain {
	best := domainOrder[0]
	for _, d := range domainOrder[1:] {
		if domainAverage(avg, d) > domainAverage(avg, best) {
			best = d
		}
	}
	return best
}

// WeakestDomain returns the sub-domain with the lowest average, with the same
// first-encountered tie-break as StrongestDomain.
func WeakestDomain(avg Averages) Domain {
	worst := domainOrder[0]
	for _, d := range domainOrder[1:] {
		if domainAverage(avg, d) < domainAverage(avg, worst) {
			worst = d
		}
	}
	return worst
}
