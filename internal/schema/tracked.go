package schema

// DescriptorVersion increments whenever TrackedTables changes shape. Worker
// schemas provisioned under an older version are re-cloned on the next
// ensure, not patched in place.
const DescriptorVersion = 3

// CanonicalSchema is the schema the production application tables live in.
const CanonicalSchema = "public"

// SharedIdentityTable holds user identities. It is never cloned: every
// worker's rows reference the same canonical identity records.
const SharedIdentityTable = "auth.users"

// TrackedTables lists every table cloned into a worker schema, parents
// before children so foreign-key targets exist by the time they are added.
// Data clearing walks this list in reverse.
var TrackedTables = []TrackedTable{
	{
		Name: "accounts",
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "categories",
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "expenses",
		LocalFKs: []ForeignKey{
			{Column: "account_id", ParentTable: "accounts", ParentColumn: "id"},
			{Column: "category_id", ParentTable: "categories", ParentColumn: "id"},
		},
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "incomes",
		LocalFKs: []ForeignKey{
			{Column: "account_id", ParentTable: "accounts", ParentColumn: "id"},
			{Column: "category_id", ParentTable: "categories", ParentColumn: "id"},
		},
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "notifications",
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "onboarding_progress",
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
	{
		Name: "tour_progress",
		SharedFKs: []ForeignKey{
			{Column: "user_id", ParentTable: SharedIdentityTable, ParentColumn: "id"},
		},
	},
}

// Names returns the tracked table names in declared (dependency) order.
func Names() []string {
	names := make([]string, len(TrackedTables))
	for i, t := range TrackedTables {
		names[i] = t.Name
	}
	return names
}
