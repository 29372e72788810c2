// Package lifecycle holds the experiment status machine:
//
//	configuring -> pending -> in_progress -> completed -> signed
//
// Progression is strictly forward and signed is terminal. The guards here
// are enforced server-side; the UI hiding a control is not the invariant.
package lifecycle

import (
	"fmt"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

// Order lists the states in progression order.
var Order = []model.ExperimentStatus{
	model.ExperimentConfiguring,
	model.ExperimentPending,
	model.ExperimentInProgress,
	model.ExperimentCompleted,
	model.ExperimentSigned,
}

var rank = func() map[model.ExperimentStatus]int {
	m := make(map[model.ExperimentStatus]int, len(Order))
	for i, s := range Order {
		m[s] = i
	}
	return m
}()

// Valid reports whether s is one of the five defined states.
func Valid(s model.ExperimentStatus) bool {
	_, ok := rank[s]
	return ok
}

// ValidInitial reports whether a newly created experiment may start in s.
// Creation allows configuring (default) or in_progress ("save & start");
// a new experiment can never be born signed.
func ValidInitial(s model.ExperimentStatus) bool {
	return s == model.ExperimentConfiguring || s == model.ExperimentInProgress
}

// CanTransition reports whether an explicit edit may move from -> to.
// Staying in place is allowed; any later state is reachable directly;
// regression never is. Signing is excluded here: it has its own entry
// point with its own guard.
func CanTransition(from, to model.ExperimentStatus) error {
	rf, ok := rank[from]
	if !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	rt, ok := rank[to]
	if !ok {
		return fmt.Errorf("unknown status %q", to)
	}
	if from == model.ExperimentSigned {
		return fmt.Errorf("experiment is signed and immutable")
	}
	if to == model.ExperimentSigned {
		return fmt.Errorf("use the sign action to reach %q", model.ExperimentSigned)
	}
	if rt < rf {
		return fmt.Errorf("cannot move status backwards from %q to %q", from, to)
	}
	return nil
}

// CanSign reports whether the dedicated sign action applies. Only a
// completed experiment can be signed, and only once.
func CanSign(from model.ExperimentStatus) error {
	if from == model.ExperimentSigned {
		return fmt.Errorf("experiment is already signed")
	}
	if from != model.ExperimentCompleted {
		return fmt.Errorf("only a completed experiment can be signed, status is %q", from)
	}
	return nil
}
