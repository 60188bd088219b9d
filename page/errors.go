package page

import "errors"

// ErrInvalidHeaderSize is returned by Header.Parse when given a buffer
// that is not exactly HeaderSize bytes.
var ErrInvalidHeaderSize = errors.New("page: invalid header size")
