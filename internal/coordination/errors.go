package coordination

import "errors"

// ErrDoesNotExist is returned by StartupIfExists when the caller wins the
// exclusive lock but finds no created cluster underneath it.
var ErrDoesNotExist = errors.New("coordination: cluster does not exist")
