package domain

// Status is the public flood status derived from discharge.
type Status string

const (
	StatusNormal Status = "normal"
	StatusAlert  Status = "alert"
	StatusDanger Status = "danger"
)

const (
	alertDischargeM3s  = 10.0
	dangerDischargeM3s = 20.0

	// movingThreshold is the velocity above which the surface counts as moving.
	movingThreshold = 0.05
)

// ClassifyDischarge maps a discharge to the public status badge.
func ClassifyDischarge(q float64) Status {
	switch {
	case q > dangerDischargeM3s:
		return StatusDanger
	case q > alertDischargeM3s:
		return StatusAlert
	default:
		return StatusNormal
	}
}

// IsMoving reports whether a measured velocity indicates flowing water.
func IsMoving(velocity float64) bool {
	return velocity > movingThreshold
}
