package hospital

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) String() string {
	return string(s)
}

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// FeePolicy selects the fee formula a hospital is configured with.
// Legacy records carried ad hoc per-record formulas; the policy field
// makes the strategy explicit.
type FeePolicy string

const (
	// FeePolicyFlat charges a fixed platform fee plus a fixed emergency
	// surcharge.
	FeePolicyFlat FeePolicy = "flat"
	// FeePolicyPercent charges a percentage of the hospital's base
	// booking price as the platform fee.
	FeePolicyPercent FeePolicy = "percent"
)

func (p FeePolicy) IsValid() bool {
	switch p {
	case FeePolicyFlat, FeePolicyPercent:
		return true
	default:
		return false
	}
}
