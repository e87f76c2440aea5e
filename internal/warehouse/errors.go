// internal/warehouse/errors.go
package warehouse

import (
    "errors"
    "fmt"
)

// ErrUnknownConnection is returned when an asset names a connection key
// that is not present in the configuration.
var ErrUnknownConnection = errors.New("unknown connection key")

// ConnectionError marks a failure to reach a named data source. The
// engine treats these differently from query errors: every asset bound
// to the dead key is skipped for the rest of the run.
type ConnectionError struct {
    Key string
    Err error
}

func (e *ConnectionError) Error() string {
    return fmt.Sprintf("connection %q: %v", e.Key, e.Err)
}

func (e *ConnectionError) Unwrap() error {
    return e.Err
}

// QueryError marks a failure of a single table probe on an otherwise
// healthy connection. Only the one asset is affected.
type QueryError struct {
    Table string
    Err   error
}

func (e *QueryError) Error() string {
    return fmt.Sprintf("query against %q: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
    return e.Err
}

func IsConnectionError(err error) bool {
    var ce *ConnectionError
    return errors.As(err, &ce)
}

func IsQueryError(err error) bool {
    var qe *QueryError
    return errors.As(err, &qe)
}
