package facts

import "errors"

// ErrUnsupportedConstant is returned when a constant kind outside the
// recognised set reaches the generator. Unlike unsupported instructions
// (which degrade to instrUnknown facts), this is fatal: the object would be
// invisible to the rules and the result unsound without a conservative
// stand-in.
var ErrUnsupportedConstant = errors.New("unsupported constant kind")
