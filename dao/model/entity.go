package model

// EntityType is the tag of the polymorphic {kind, id} references carried by
// comments, files, notifications and activity log rows. Validation of these
// references is centralized here; handlers must not compare raw strings.
type EntityType string

const (
	EntityProject     EntityType = "project"
	EntityStudy       EntityType = "study"
	EntityExperiment  EntityType = "experiment"
	EntityProtocol    EntityType = "protocol"
	EntityTemplate    EntityType = "template"
	EntitySample      EntityType = "sample"
	EntityStorageUnit EntityType = "storage_unit"
	EntityEquipment   EntityType = "equipment"
	EntityTask        EntityType = "task"
	EntityFile        EntityType = "file"
	EntityUser        EntityType = "user"
	EntityComment     EntityType = "comment"
)

var knownEntityTypes = map[EntityType]struct{}{
	EntityProject:     {},
	EntityStudy:       {},
	EntityExperiment:  {},
	EntityProtocol:    {},
	EntityTemplate:    {},
	EntitySample:      {},
	EntityStorageUnit: {},
	EntityEquipment:   {},
	EntityTask:        {},
	EntityFile:        {},
	EntityUser:        {},
	EntityComment:     {},
}

func (t EntityType) Valid() bool {
	_, ok := knownEntityTypes[t]
	return ok
}

// EntityRef is a tagged reference to any attachable entity.
type EntityRef struct {
	Type EntityType `json:"entityType"`
	ID   uint       `json:"entityId"`
}
