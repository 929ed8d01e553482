// Package query translates list parameters (sort key, direction,
// completion filter) into the deterministic SQL fragments the storage
// layer executes. Title ordering is case-sensitive (SQLite BINARY
// collation); every ordering ends with an id tiebreak so identical
// inputs always produce identical sequences.
package query

type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByCreatedAt SortKey = "createdAt"
	SortByCompleted SortKey = "completed"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortByTitle, SortByCreatedAt, SortByCompleted:
		return true
	default:
		return false
	}
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterCompleted, FilterPending:
		return true
	default:
		return false
	}
}

// Completed returns the boolean the filter restricts to, or nil for all.
func (f Filter) Completed() *bool {
	switch f {
	case FilterCompleted:
		v := true
		return &v
	case FilterPending:
		v := false
		return &v
	default:
		return nil
	}
}

type Spec struct {
	SortBy    SortKey
	Ascending bool
	Filter    Filter
}

// Default is the ordering used when nothing has been chosen yet:
// newest first, everything visible.
func Default() Spec {
	return Spec{SortBy: SortByCreatedAt, Ascending: false, Filter: FilterAll}
}

// Normalize maps unknown sort keys to createdAt descending and unknown
// filters to all. An invalid spec is never an error.
func (s Spec) Normalize() Spec {
	if !s.SortBy.IsValid() {
		s.SortBy = SortByCreatedAt
		s.Ascending = false
	}
	if !s.Filter.IsValid() {
		s.Filter = FilterAll
	}
	return s
}

// Where returns the filter clause (without the WHERE keyword) and its
// arguments. Empty string means no filtering.
func (s Spec) Where() (string, []any) {
	completed := s.Normalize().Filter.Completed()
	if completed == nil {
		return "", nil
	}
	v := 0
	if *completed {
		v = 1
	}
	return "completed = ?", []any{v}
}

// OrderBy returns the ORDER BY column list.
//
// Sorting by completion is a two-level sort: the completed flag is the
// primary key, and within each bucket tasks are always newest-first no
// matter the primary direction.
func (s Spec) OrderBy() string {
	n := s.Normalize()
	dir := "DESC"
	if n.Ascending {
		dir = "ASC"
	}
	switch n.SortBy {
	case SortByTitle:
		return "title " + dir + ", id ASC"
	case SortByCompleted:
		return "completed " + dir + ", created_at DESC, id ASC"
	default:
		return "created_at " + dir + ", id ASC"
	}
}
