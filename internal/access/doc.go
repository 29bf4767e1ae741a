// Package access decides whether a profile may perform a named action.
//
// Evaluation order, first match wins:
//
//  1. missing or inactive profile: ReasonUnauthenticated
//  2. role not granted the action: ReasonForbiddenRole
//  3. role granted but department does not satisfy the action's sub-role constraint: ReasonForbiddenSubrole
//  4. otherwise: ReasonOK
//
// Role grants live in a casbin policy built from the action catalogue, or
// loaded from an operator-supplied CSV. Sub-role constraints stay on the
// Action because they compare profile fields, not policy rows.
package access
