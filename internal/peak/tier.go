package peak

// Severity is the display severity attached to an intensity range.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Tier is one step of the y-axis scale.
type Tier struct {
	YMax     float64
	Label    string
	Severity Severity
}

// Intensity tiers, lowest first. A height belongs to the first tier whose
// YMax it does not exceed; anything above the last threshold is full scale.
var (
	TierLow  = Tier{YMax: 300, Label: "Low Range (0-300)", Severity: SeverityInfo}
	TierMid  = Tier{YMax: 500, Label: "Mid Range (0-500)", Severity: SeverityWarning}
	TierFull = Tier{YMax: 1000, Label: "Full Scale (0-1000)", Severity: SeverityCritical}
)

// Classify maps a peak height onto its y-axis tier.
func Classify(height float64) Tier {
	switch {
	case height > TierMid.YMax:
		return TierFull
	case height > TierLow.YMax:
		return TierMid
	default:
		return TierLow
	}
}
