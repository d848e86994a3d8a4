package version

import "errors"

// Error variables for version operations.
//
// All of them are terminal for the current operation: the computation is
// pure, so retrying with the same inputs cannot change the outcome.
var (
	ErrParse              = errors.New("version does not match parse pattern")
	ErrUnknownPart        = errors.New("no part with that name")
	ErrExhaustedDomain    = errors.New("part has no successor value")
	ErrUnknownPlaceholder = errors.New("template references unbound name")
	ErrSerialization      = errors.New("candidate cannot represent version")
	ErrSpecInvalid        = errors.New("invalid part spec")
	ErrTemplateInvalid    = errors.New("invalid template")
)
