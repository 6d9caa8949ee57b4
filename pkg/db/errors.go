package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Postgres names the violated constraint in its
// message, while SQLite phrases the failure by table.column, so when a
// constraint name like idx_users_email is given the helper also checks for
// the users.email form. With no constraint name any unique violation
// from either driver matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName == "" {
		return strings.Contains(msg, "duplicate key value") ||
			strings.Contains(msg, "UNIQUE constraint failed")
	}
	if strings.Contains(msg, constraintName) {
		return true
	}
	if ref, ok := sqliteColumnRef(constraintName); ok {
		return strings.Contains(msg, "UNIQUE constraint failed") &&
			strings.Contains(msg, ref)
	}
	return false
}

// sqliteColumnRef translates an idx_<table>_<column> index name into the
// <table>.<column> reference SQLite uses in violation messages.
func sqliteColumnRef(constraintName string) (string, bool) {
	name, ok := strings.CutPrefix(constraintName, "idx_")
	if !ok {
		return "", false
	}
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	return name[:i] + "." + name[i+1:], true
}
