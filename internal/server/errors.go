package server

import "errors"

// Root error for all server failures.
var ErrServer = errors.New("server error")
