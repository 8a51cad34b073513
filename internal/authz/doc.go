// Package authz implements role and feature based authorization.
//
// Features are the unit of permission. Roles bundle features and are assigned to users
// of an external user directory. A user holds a feature when an active, unexpired
// assignment gives them an active role bound to that feature.
//
// The Service covers five parts:
//   - feature registry: ListFeatures, CreateFeature, DeleteFeature, GroupByCategory
//   - role store: ListRoles, CreateRole, UpdateRole, DeleteRole
//   - role-feature binding: FeaturesForRole, AssignFeature, RemoveFeature, ToggleFeature, SetRoleFeatures
//   - user-role assignment: ListAssignments, AssignRole, RemoveAssignment, SetAssignmentActive, RolesForUser
//   - authorization queries: UserFeatures, UserHasFeature, UserHasAnyFeature, UserHasAllFeatures
//
// Every error wraps one of ErrValidation, ErrNotFound, ErrForbidden, ErrTransient or ErrConflict.
// System roles can neither be deleted nor lose their system flag. Deletes cascade inside one
// transaction. Queries never write and may be answered from a snapshot a few hundred
// milliseconds old; mutations made through the same Service flush it.
package authz
