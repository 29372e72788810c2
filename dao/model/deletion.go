package model

// DeletionPolicy makes the two coexisting delete semantics explicit instead
// of leaving them as a convention scattered across handlers.
type DeletionPolicy string

const (
	// DeleteHard removes the row; the handler layer cascades over owned
	// children in one transaction (Project -> Study -> Experiment, never
	// the reverse).
	DeleteHard DeletionPolicy = "hard"
	// DeleteSoft flips is_active to false; the row keeps its referential
	// history and is excluded from default listings.
	DeleteSoft DeletionPolicy = "soft"
)

var deletionPolicies = map[EntityType]DeletionPolicy{
	EntityProject:     DeleteHard,
	EntityStudy:       DeleteHard,
	EntityExperiment:  DeleteHard,
	EntityTask:        DeleteHard,
	EntityProtocol:    DeleteSoft,
	EntityTemplate:    DeleteSoft,
	EntitySample:      DeleteSoft,
	EntityStorageUnit: DeleteSoft,
	EntityEquipment:   DeleteSoft,
	EntityFile:        DeleteSoft,
}

func DeletionPolicyFor(t EntityType) DeletionPolicy {
	if p, ok := deletionPolicies[t]; ok {
		return p
	}
	return DeleteHard
}
