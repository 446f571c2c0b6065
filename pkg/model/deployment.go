package model

type DeploymentStatus string

const (
	StatusPending        DeploymentStatus = "pending"
	StatusCreating       DeploymentStatus = "creating"
	StatusCreateComplete DeploymentStatus = "create_complete"
	StatusCreateFailed   DeploymentStatus = "create_failed"
	StatusUpdating       DeploymentStatus = "updating"
	StatusUpdateComplete DeploymentStatus = "update_complete"
	StatusUpdateFailed   DeploymentStatus = "update_failed"
	StatusDeleting       DeploymentStatus = "deleting"
	StatusDeleteComplete DeploymentStatus = "delete_complete"
	StatusDeleteFailed   DeploymentStatus = "delete_failed"
	StatusUnknown        DeploymentStatus = "unknown"
)

var validTransitions = map[DeploymentStatus][]DeploymentStatus{
	StatusPending:        {StatusCreating, StatusDeleting},
	StatusCreating:       {StatusCreateComplete, StatusCreateFailed},
	StatusCreateComplete: {StatusUpdating, StatusDeleting},
	StatusCreateFailed:   {StatusCreating, StatusDeleting},
	StatusUpdating:       {StatusUpdateComplete, StatusUpdateFailed},
	StatusUpdateComplete: {StatusUpdating, StatusDeleting},
	StatusUpdateFailed:   {StatusUpdating, StatusDeleting},
	StatusDeleting:       {StatusDeleteComplete, StatusDeleteFailed},
	StatusDeleteComplete: {StatusCreating},
	StatusDeleteFailed:   {StatusDeleting},
}

func isValidTransition(from, to DeploymentStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatus maps an engine summary result onto the status following the
// given in-flight status. Results other than "succeeded" are failures.
func NextStatus(current DeploymentStatus, result string) DeploymentStatus {
	succeeded := result == "succeeded"
	switch current {
	case StatusCreating:
		if succeeded {
			return StatusCreateComplete
		}
		return StatusCreateFailed
	case StatusUpdating:
		if succeeded {
			return StatusUpdateComplete
		}
		return StatusUpdateFailed
	case StatusDeleting:
		if succeeded {
			return StatusDeleteComplete
		}
		return StatusDeleteFailed
	default:
		return StatusUnknown
	}
}

// InFlightStatus returns the status a new up operation transitions to from
// the current status: creating for a fresh or torn-down deployment, updating
// for an existing one.
func InFlightStatus(current DeploymentStatus) DeploymentStatus {
	switch current {
	case "", StatusPending, StatusCreateFailed, StatusDeleteComplete:
		return StatusCreating
	default:
		return StatusUpdating
	}
}
