package types

import (
	"encoding/json"
	"fmt"
)

// RelatedKind names the entity a notification points at
type RelatedKind string

const (
	RelatedApplication RelatedKind = "application"
	RelatedOutreach    RelatedKind = "outreach"
	RelatedGoal        RelatedKind = "goal"
	RelatedQuest       RelatedKind = "micro_quest"
)

// RelatedKinds lists every referenceable kind
var RelatedKinds = []RelatedKind{RelatedApplication, RelatedOutreach, RelatedGoal, RelatedQuest}

// IsValid reports whether k is a known kind
func (k RelatedKind) IsValid() bool {
	return contains(RelatedKinds, k)
}

// RelatedRef is a reference from a notification to one other entity.
// The implementations below are the only values it can hold.
type RelatedRef interface {
	Kind() RelatedKind
	RefID() string
	isRelatedRef()
}

// ApplicationRef points at an application
type ApplicationRef struct {
	ApplicationID string
}

// OutreachRef points at an outreach activity
type OutreachRef struct {
	OutreachID string
}

// GoalRef points at a weekly goal
type GoalRef struct {
	GoalID string
}

// QuestRef points at a micro-quest by its quest identifier (e.g. "mq-1")
type QuestRef struct {
	QuestID string
}

func (r ApplicationRef) Kind() RelatedKind { return RelatedApplication }
func (r ApplicationRef) RefID() string     { return r.ApplicationID }
func (ApplicationRef) isRelatedRef()       {}

func (r OutreachRef) Kind() RelatedKind { return RelatedOutreach }
func (r OutreachRef) RefID() string     { return r.OutreachID }
func (OutreachRef) isRelatedRef()       {}

func (r GoalRef) Kind() RelatedKind { return RelatedGoal }
func (r GoalRef) RefID() string     { return r.GoalID }
func (GoalRef) isRelatedRef()       {}

func (r QuestRef) Kind() RelatedKind { return RelatedQuest }
func (r QuestRef) RefID() string     { return r.QuestID }
func (QuestRef) isRelatedRef()       {}

// NewRelatedRef rebuilds a reference from its stored kind and id
func NewRelatedRef(kind RelatedKind, id string) (RelatedRef, error) {
	if id == "" {
		return nil, fmt.Errorf("related id is required for kind %q", kind)
	}
	switch kind {
	case RelatedApplication:
		return ApplicationRef{ApplicationID: id}, nil
	case RelatedOutreach:
		return OutreachRef{OutreachID: id}, nil
	case RelatedGoal:
		return GoalRef{GoalID: id}, nil
	case RelatedQuest:
		return QuestRef{QuestID: id}, nil
	default:
		return nil, fmt.Errorf("invalid related type %q, must be one of: %s", kind, JoinValues(RelatedKinds))
	}
}

// RelatedRefJSON is the wire form of a RelatedRef
type RelatedRefJSON struct {
	Type RelatedKind `json:"type"`
	ID   string      `json:"id"`
}

// EncodeRelatedRef converts a reference to its wire form, nil stays nil
func EncodeRelatedRef(ref RelatedRef) *RelatedRefJSON {
	if ref == nil {
		return nil
	}
	return &RelatedRefJSON{Type: ref.Kind(), ID: ref.RefID()}
}

// Decode converts the wire form back to a reference
func (r *RelatedRefJSON) Decode() (RelatedRef, error) {
	if r == nil {
		return nil, nil
	}
	return NewRelatedRef(r.Type, r.ID)
}

// UnmarshalJSON validates the kind while decoding
func (r *RelatedRefJSON) UnmarshalJSON(data []byte) error {
	type plain RelatedRefJSON
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if _, err := NewRelatedRef(p.Type, p.ID); err != nil {
		return err
	}
	*r = RelatedRefJSON(p)
	return nil
}
