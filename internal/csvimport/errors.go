package csvimport

import "errors"

// ErrMalformedInput covers every failure to read or transform an uploaded
// file: non-tabular content, missing columns and cell coercion errors.
var ErrMalformedInput = errors.New("malformed csv input")
