package workflow

import "qlms/models/lms"

// legalTransitions is the closed transition table for enrollment statuses.
// Annulled has no outgoing edges; every other state may be annulled by an
// admin.
var legalTransitions = map[string][]string{
	lms.StatusAssigned:      {lms.StatusInProgress, lms.StatusExamAvailable, lms.StatusAnnulled},
	lms.StatusInProgress:    {lms.StatusExamAvailable, lms.StatusAnnulled},
	lms.StatusExamAvailable: {lms.StatusPendingPDEK, lms.StatusExamPassed, lms.StatusExamFailed, lms.StatusAnnulled},
	lms.StatusPendingPDEK:   {lms.StatusExamPassed, lms.StatusExamFailed, lms.StatusAnnulled},
	lms.StatusExamPassed:    {lms.StatusCompleted, lms.StatusAnnulled},
	lms.StatusExamFailed:    {lms.StatusExamAvailable, lms.StatusAnnulled},
	lms.StatusCompleted:     {lms.StatusAnnulled},
	lms.StatusAnnulled:      {},
}

func canTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
