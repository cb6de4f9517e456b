package auth

import "strings"

// Permission is a single grantable permission identifier.
// The catalog below is the full closed set; it is compiled into the service
// and never mutated at runtime.
type Permission string

const (
	// Dashboard
	PermViewDashboard Permission = "view_dashboard"

	// Inventory
	PermViewInventory   Permission = "view_inventory"
	PermEditInventory   Permission = "edit_inventory"
	PermDeleteInventory Permission = "delete_inventory"
	PermCreateInventory Permission = "create_inventory"

	// Invoices
	PermViewInvoices   Permission = "view_invoices"
	PermEditInvoices   Permission = "edit_invoices"
	PermDeleteInvoices Permission = "delete_invoices"
	PermCreateInvoices Permission = "create_invoices"

	// Projects
	PermViewProjects   Permission = "view_projects"
	PermEditProjects   Permission = "edit_projects"
	PermDeleteProjects Permission = "delete_projects"
	PermCreateProjects Permission = "create_projects"

	// User management
	PermManageUsers       Permission = "manage_users"
	PermAssignPermissions Permission = "assign_permissions"
)

// AllPermissions lists every grantable permission in declaration order
var AllPermissions = []Permission{
	PermViewDashboard,
	PermViewInventory, PermEditInventory, PermDeleteInventory, PermCreateInventory,
	PermViewInvoices, PermEditInvoices, PermDeleteInvoices, PermCreateInvoices,
	PermViewProjects, PermEditProjects, PermDeleteProjects, PermCreateProjects,
	PermManageUsers, PermAssignPermissions,
}

// canonical maps lowercase identifier -> canonical Permission
var canonical = func() map[string]Permission {
	m := make(map[string]Permission, len(AllPermissions))
	for _, p := range AllPermissions {
		m[strings.ToLower(string(p))] = p
	}
	return m
}()

// Normalize resolves s to its canonical Permission, matching case-insensitively.
// Returns false when s is not in the catalog.
func Normalize(s string) (Permission, bool) {
	p, ok := canonical[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// NormalizeSet validates and de-duplicates raw permission names case-insensitively,
// preserving first-seen order. Unknown inputs are collected in invalid verbatim.
func NormalizeSet(raw []string) (valid []Permission, invalid []string) {
	seen := make(map[Permission]bool, len(raw))
	for _, s := range raw {
		p, ok := Normalize(s)
		if !ok {
			invalid = append(invalid, s)
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		valid = append(valid, p)
	}
	return valid, invalid
}

// Strings converts a permission set back to its string form for storage and claims
func Strings(perms []Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
