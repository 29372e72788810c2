// Enum values stored in varchar columns. The API accepts and returns these
// strings verbatim, so they must stay in sync with the frontend.
package model

// User role in the platform
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleResearcher Role = "researcher"
	RoleViewer     Role = "viewer"
)

// Project status
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Experiment lifecycle status, strictly forward with one terminal state
type ExperimentStatus string

const (
	ExperimentConfiguring ExperimentStatus = "configuring"
	ExperimentPending     ExperimentStatus = "pending"
	ExperimentInProgress  ExperimentStatus = "in_progress"
	ExperimentCompleted   ExperimentStatus = "completed"
	ExperimentSigned      ExperimentStatus = "signed"
)

// Protocol visibility
type Visibility string

const (
	VisibilityPersonal Visibility = "personal"
	VisibilityGroup    Visibility = "group"
	VisibilityPublic   Visibility = "public"
)

// Protocol difficulty (nullable column, pointer in the model)
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Sample status
type SampleStatus string

const (
	SampleAvailable SampleStatus = "available"
	SampleInUse     SampleStatus = "in_use"
	SampleDepleted  SampleStatus = "depleted"
	SampleExpired   SampleStatus = "expired"
	SampleDisposed  SampleStatus = "disposed"
)

// Equipment status
type EquipmentStatus string

const (
	EquipmentOperational  EquipmentStatus = "operational"
	EquipmentMaintenance  EquipmentStatus = "maintenance"
	EquipmentOutOfService EquipmentStatus = "out_of_service"
	EquipmentReserved     EquipmentStatus = "reserved"
)

// Task status, the kanban columns
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Task priority
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Action recorded in the activity log
type ActivityAction string

const (
	ActionCreated ActivityAction = "created"
	ActionUpdated ActivityAction = "updated"
	ActionDeleted ActivityAction = "deleted"
	ActionSigned  ActivityAction = "signed"
)
