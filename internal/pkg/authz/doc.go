// Package authz builds the casbin RBAC enforcer guarding operator endpoints.
//
// Subjects are matched through role groupings, so a token whose subject is
// "auditor" satisfies a policy granted to the role "auditor" directly, and a
// grouping "ops-1|auditor" grants it to subject "ops-1".
package authz
