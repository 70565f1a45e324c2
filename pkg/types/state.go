package types

// State is the output classification of a package in a transaction.
// The same value is mirrored onto the package object while the
// package is part of a transaction.
type State string

// Output states.
const (
	StateNone        State = ""
	StateAvailable   State = "available"
	StateInstall     State = "install"
	StateTrueInstall State = "true-install"
	StateErase       State = "erase"
	StateUpdate      State = "update"
	StateUpdated     State = "updated"
	StateObsoleting  State = "obsoleting"
	StateObsoleted   State = "obsoleted"
)

// TargetState is the internal resolution marker of a member.
type TargetState string

// Target states.  TargetNone is reported when nothing matches.
const (
	TargetNone       TargetState = "none"
	TargetAvailable  TargetState = "available"
	TargetInstall    TargetState = "install"
	TargetUpdate     TargetState = "update"
	TargetUpdated    TargetState = "updated"
	TargetObsoleting TargetState = "obsoleting"
	TargetObsoleted  TargetState = "obsoleted"
)

// Reason records why a member is in the transaction.
type Reason string

// Reasons.
const (
	ReasonUser       Reason = "user"
	ReasonDependency Reason = "dependency"
)

// Relation is the kind of an edge between two members.
type Relation string

// Relations.
const (
	RelDependsOn   Relation = "depends-on"
	RelUpdates     Relation = "updates"
	RelUpdatedBy   Relation = "updated-by"
	RelObsoletes   Relation = "obsoletes"
	RelObsoletedBy Relation = "obsoleted-by"
)
