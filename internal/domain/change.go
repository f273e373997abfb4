package domain

import "context"

// Store tables that emit change notifications.
const (
	TableEvents        = "events"
	TableRegistrations = "registrations"
	TableAgendaItems   = "agenda_items"
	TableProfiles      = "profiles"

	// TableAny is carried by a Resync change and matches every filter.
	TableAny = "*"
)

// ChangeOp is the kind of row change.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
	OpResync ChangeOp = "RESYNC"
)

// Change is a change notification: a row of Table matching some filter was
// inserted, updated or deleted. Row holds the key columns of the new row (old
// row for deletes). Consumers re-fetch rather than trusting the payload.
type Change struct {
	Table string            `json:"table"`
	Op    ChangeOp          `json:"op"`
	Row   map[string]string `json:"row"`
}

// Resync returns the change emitted when notifications may have been lost.
func Resync() Change {
	return Change{Table: TableAny, Op: OpResync}
}

// Filter scopes a subscription to a table and optionally to rows whose
// Column equals Value.
type Filter struct {
	Table  string
	Column string
	Value  string
}

// TableFilter returns an unfiltered subscription scope on table.
func TableFilter(table string) Filter {
	return Filter{Table: table}
}

// RowFilter returns a subscription scope on table rows where column = value.
func RowFilter(table, column, value string) Filter {
	return Filter{Table: table, Column: column, Value: value}
}

// Matches reports whether the change falls within the filter.
func (f Filter) Matches(c Change) bool {
	if c.Table == TableAny {
		return true
	}
	if c.Table != f.Table {
		return false
	}
	if f.Column == "" {
		return true
	}
	return c.Row[f.Column] == f.Value
}

// String renders the filter in the store's "table:column=eq.value" notation.
func (f Filter) String() string {
	if f.Column == "" {
		return f.Table
	}
	return f.Table + ":" + f.Column + "=eq." + f.Value
}

// ChangeSource produces change notifications until ctx is done.
type ChangeSource interface {
	Listen(ctx context.Context, publish func(Change)) error
}
