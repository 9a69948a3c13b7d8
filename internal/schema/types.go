// Package schema declares the tracked-table descriptor: the fixed, ordered
// list of application tables that is cloned into every worker schema.
//
// The descriptor is data, not logic. Adding a table to the isolation layer
// means adding an entry to TrackedTables (in dependency order) and bumping
// DescriptorVersion; no provisioning code changes.
package schema

// ForeignKey describes one foreign-key edge of a tracked table.
type ForeignKey struct {
	// Column is the referencing column on the child table.
	Column string

	// ParentTable is the referenced table. For namespace-local keys this is
	// a bare tracked-table name, resolved inside the worker schema. For
	// shared keys it may be schema-qualified (e.g. "auth.users") and always
	// resolves to the canonical location.
	ParentTable string

	// ParentColumn is the referenced column on the parent table.
	ParentColumn string
}

// TrackedTable describes one table cloned into every worker schema.
type TrackedTable struct {
	Name string

	// LocalFKs are re-pointed at the worker schema's own copy of the parent
	// table, so referential integrity resolves inside the namespace.
	LocalFKs []ForeignKey

	// SharedFKs reference tables that live outside any worker schema (auth
	// and identity records) and keep pointing at the canonical location.
	// LIKE-cloning never copies foreign keys, so both kinds are re-added
	// explicitly after the clone.
	SharedFKs []ForeignKey
}
