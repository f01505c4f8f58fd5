package model

import "errors"

// ErrNotFound reports an entity (repository, branch, or ticket) that the
// backing system does not know about. Sources and resolvers wrap or return
// it so callers can branch on errors.Is without knowing the transport.
var ErrNotFound = errors.New("not found")
