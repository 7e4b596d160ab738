// Package authz is the single decision point for role and tenant checks.
// Every handler and service asks these functions before touching storage;
// none of them re-derives the role logic locally.
//
// Decisions are pure: a Caller plus a resource descriptor goes in, a verdict
// comes out. Listing is expressed as a Scope that repositories translate into
// a WHERE clause, never as a post-filter over rows the caller may not see.
package authz

import (
	"github.com/google/uuid"

	"carma/internal/models"
)

// Caller describes the authenticated principal making a request.
type Caller struct {
	UserID    uuid.UUID
	Role      models.Role
	CompanyID *uuid.UUID
	// ProjectIDs is the caller's project membership set. It is only loaded
	// (and only meaningful) for "user"-role callers.
	ProjectIDs []uuid.UUID
}

// IsMemberOf reports whether projectID is in the caller's membership set.
func (c Caller) IsMemberOf(projectID uuid.UUID) bool {
	for _, id := range c.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

func (c Caller) sameCompany(companyID uuid.UUID) bool {
	return c.CompanyID != nil && *c.CompanyID == companyID
}

// companyScope narrows a companyadmin to their company. A caller with no
// company on record has nothing to be scoped to and gets no visibility.
func companyScope(c Caller) Scope {
	if c.CompanyID == nil {
		return ScopeNone
	}
	return ScopeCompany
}

// Scope is the WHERE-clause-equivalent visibility of a list operation.
type Scope int

const (
	// ScopeNone denies the listing outright.
	ScopeNone Scope = iota
	// ScopeAll returns every row, across companies.
	ScopeAll
	// ScopeCompany restricts rows to the caller's company.
	ScopeCompany
	// ScopeProjects restricts rows to the caller's membership projects.
	ScopeProjects
)

// ConsumptionListScope maps a role to its consumption visibility.
func ConsumptionListScope(c Caller) Scope {
	switch c.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleCompanyAdmin:
		return companyScope(c)
	case models.RoleUser:
		return ScopeProjects
	}
	return ScopeNone
}

// ProjectListScope maps a role to its project visibility.
func ProjectListScope(c Caller) Scope {
	switch c.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleCompanyAdmin:
		return companyScope(c)
	case models.RoleUser:
		return ScopeProjects
	}
	return ScopeNone
}

// UserListScope maps a role to its user-directory visibility. Plain users
// have none.
func UserListScope(c Caller) Scope {
	switch c.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleCompanyAdmin:
		return companyScope(c)
	}
	return ScopeNone
}

// InviteListScope maps a role to its pending-invite visibility.
func InviteListScope(c Caller) Scope {
	switch c.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleCompanyAdmin:
		return companyScope(c)
	}
	return ScopeNone
}

// CanCreateConsumption decides whether the caller may log consumption against
// the given project.
func CanCreateConsumption(c Caller, projectID, projectCompanyID uuid.UUID) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCompanyAdmin:
		return c.sameCompany(projectCompanyID)
	case models.RoleUser:
		return c.IsMemberOf(projectID)
	}
	return false
}

// CanMutateConsumption decides edit/delete on a consumption record. The
// clauses are OR-ed: any one grants access.
func CanMutateConsumption(c Caller, authorID, projectCompanyID uuid.UUID) bool {
	if c.Role == models.RoleAdmin {
		return true
	}
	if c.Role == models.RoleCompanyAdmin && c.sameCompany(projectCompanyID) {
		return true
	}
	return c.UserID == authorID
}

// CanReadProject decides single-project reads.
func CanReadProject(c Caller, projectID, projectCompanyID uuid.UUID) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCompanyAdmin:
		return c.sameCompany(projectCompanyID)
	case models.RoleUser:
		return c.IsMemberOf(projectID)
	}
	return false
}

// CanManageProject decides create/update/delete on a project within the given
// company. Plain users never manage projects.
func CanManageProject(c Caller, projectCompanyID uuid.UUID) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCompanyAdmin:
		return c.sameCompany(projectCompanyID)
	}
	return false
}

// CanReadUser decides single-user reads. Everyone may read themselves.
func CanReadUser(c Caller, targetID uuid.UUID, targetCompanyID *uuid.UUID) bool {
	if c.Role == models.RoleAdmin || c.UserID == targetID {
		return true
	}
	return c.Role == models.RoleCompanyAdmin && targetCompanyID != nil && c.sameCompany(*targetCompanyID)
}

// CanManageUser decides update/delete on a user record.
func CanManageUser(c Caller, targetCompanyID *uuid.UUID) bool {
	if c.Role == models.RoleAdmin {
		return true
	}
	return c.Role == models.RoleCompanyAdmin && targetCompanyID != nil && c.sameCompany(*targetCompanyID)
}

// CanInvite decides whether the caller may create invites at all. Company and
// role coercion for companyadmins happens in CoerceInvite.
func CanInvite(c Caller) bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleCompanyAdmin
}

// CoerceInvite applies the tenancy restriction on invite creation: a
// companyadmin always invites plain users into their own company, regardless
// of what the request asked for. Admins pass through unchanged.
func CoerceInvite(c Caller, role models.Role, companyID uuid.UUID) (models.Role, uuid.UUID) {
	if c.Role == models.RoleCompanyAdmin {
		if c.CompanyID == nil {
			return models.RoleUser, uuid.Nil
		}
		return models.RoleUser, *c.CompanyID
	}
	return role, companyID
}

// CanManageInvite decides cancel/resend on an existing invite.
func CanManageInvite(c Caller, inviteCompanyID uuid.UUID) bool {
	if c.Role == models.RoleAdmin {
		return true
	}
	return c.Role == models.RoleCompanyAdmin && c.sameCompany(inviteCompanyID)
}

// CanManageReferenceData decides mutations on companies, activity types, fuel
// types and units. Reads are open to any authenticated caller.
func CanManageReferenceData(c Caller) bool {
	return c.Role == models.RoleAdmin
}
