package checks

import "fmt"

var allowedTransitions = map[Status]map[Status]struct{}{
	StatusIdle: {
		StatusRunning: {},
	},
	StatusRunning: {
		StatusSuccess: {},
		StatusFailed:  {},
	},
	StatusSuccess: {
		StatusRunning: {},
	},
	StatusFailed: {
		StatusRunning: {},
	},
}

func ValidateStatus(s Status) error {
	if _, ok := allowedTransitions[s]; !ok {
		return fmt.Errorf("invalid check status: %q", s)
	}
	return nil
}

// ValidateTransition rejects any edge outside idle -> running -> {success, failed} -> running.
func ValidateTransition(from, to Status) error {
	if err := ValidateStatus(from); err != nil {
		return err
	}
	if err := ValidateStatus(to); err != nil {
		return err
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid check transition: %s -> %s", from, to)
	}
	return nil
}
