package errors

import (
	"errors"
)

// Configuration.

var (
	ErrMissingURL       = errors.New("the following argument is required: url (unless the diff command is used)")
	ErrInvalidConfig    = errors.New("invalid run configuration")
	ErrInvalidDocument  = errors.New("invalid JSON document")
	ErrInvalidAttach    = errors.New("attachment must be given as field=path")
	ErrInvalidParsers   = errors.New("invalid parser table")
	ErrUnsupportedBody  = errors.New("unsupported POST body type")
	ErrUnsupportedVerb  = errors.New("unsupported HTTP method")
	ErrInvalidArgument  = errors.New("invalid generator argument")
	ErrStartTooLong     = errors.New("start exceeds length")
	ErrUnknownGenerator = errors.New("unknown generator")
)
