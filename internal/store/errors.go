package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned by [LocalStore.GetEntity] when no row
	// exists for the requested entity ID, tombstoned or live.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrCursorNotFound is returned by [LocalStore.GetCursor] when the
	// device has never persisted a cursor for the company.
	ErrCursorNotFound = errors.New("sync cursor not found")

	// ErrChangeNotSaved is returned when an INSERT into the change log
	// completes without error but affects zero rows.
	ErrChangeNotSaved = errors.New("change was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back at this
	// point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingColumn is returned when a structured column (version
	// vector, entity state) cannot be marshalled for storage.
	ErrEncodingColumn = errors.New("failed to encode column value")

	// ErrDecodingColumn is returned when a structured column read from the
	// database cannot be unmarshalled back into its model type.
	ErrDecodingColumn = errors.New("failed to decode column value")
)
