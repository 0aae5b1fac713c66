package resource

import "errors"

// errMissingResource is wrapped into LoadError/plain errors returned
// when a requested resource id is not present in the MEMLIST table
// (§7 MissingResource: logged warning, opcode treated as no-op by callers).
var errMissingResource = errors.New("missing resource")

// IsMissing reports whether err represents a MissingResource condition.
func IsMissing(err error) bool { return errors.Is(err, errMissingResource) }
