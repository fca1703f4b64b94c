package claimstore

import "errors"

var ErrNotFound = errors.New("claimstore: not found")
