package policy

import (
	"github.com/cfl-legal/chambers-backend/pkg/enums"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
)

// Resource names an access-controlled entity type.
type Resource string

// Operation names an action against a resource.
type Operation string

const (
	ResourceCase      Resource = "case"
	ResourceFolder    Resource = "folder"
	ResourceDocuments Resource = "documents"
)

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpAssign Operation = "assign"
	OpList   Operation = "list"
)

// Actor is the caller identity attached by the auth middleware.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// Relationship captures how the actor relates to the resource being accessed.
// The resource's existence must be confirmed before evaluating a rule; absent
// resources are a NotFound concern, not an authorization one.
type Relationship struct {
	Creator  bool
	Assigned bool
	Self     bool
}

type requirement int

const (
	adminOnly requirement = iota
	creatorOrAdmin
	assignedOrCreatorOrAdmin
	selfOrAdmin
)

type rule struct {
	need   requirement
	denial string
}

// The whole authorization model in one table. Handlers used to repeat these
// checks inline; keeping them here prevents the same rule drifting apart
// between routes.
var rules = map[Resource]map[Operation]rule{
	ResourceCase: {
		OpRead:   {assignedOrCreatorOrAdmin, "Access denied. You must be assigned to this case."},
		OpList:   {assignedOrCreatorOrAdmin, "Access denied. You must be assigned to this case."},
		OpUpdate: {creatorOrAdmin, "You can only update cases you created"},
		OpAssign: {creatorOrAdmin, "Only admins or case owners can assign users"},
		OpDelete: {adminOnly, "Admin access required"},
	},
	ResourceFolder: {
		OpRead:   {creatorOrAdmin, "Access denied to this folder"},
		OpUpdate: {creatorOrAdmin, "Access denied to this folder"},
		OpDelete: {creatorOrAdmin, "Access denied to this folder"},
	},
	ResourceDocuments: {
		OpList: {selfOrAdmin, "You can only view your own documents"},
	},
}

// Authorize evaluates the rule for (resource, op) against the actor and their
// relationship to the resource. Admins always pass. A missing rule denies.
func Authorize(res Resource, op Operation, actor Actor, rel Relationship) error {
	if actor.IsAdmin() {
		return nil
	}

	byOp, ok := rules[res]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	r, ok := byOp[op]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}

	switch r.need {
	case creatorOrAdmin:
		if rel.Creator {
			return nil
		}
	case assignedOrCreatorOrAdmin:
		if rel.Creator || rel.Assigned {
			return nil
		}
	case selfOrAdmin:
		if rel.Self {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, r.denial)
}
