package viewmodel

import "errors"

// ErrAlreadyActive is returned by a second Activate.
var ErrAlreadyActive = errors.New("view already active")
