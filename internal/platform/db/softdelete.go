package db

// NotDeleted is the soft-delete predicate every record query must carry.
// It lives here, once, so that no query path can forget it or spell it
// differently: a soft-deleted row is invisible to every access path,
// including administrator reads.
const NotDeleted = "deleted_at IS NULL"

// AndNotDeleted appends the soft-delete predicate to an existing WHERE
// fragment. An empty fragment yields the predicate alone.
func AndNotDeleted(where string) string {
	if where == "" {
		return NotDeleted
	}
	return where + " AND " + NotDeleted
}
