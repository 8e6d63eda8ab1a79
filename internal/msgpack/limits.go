package msgpack

// Limits bounds the resources a single message may claim while it is being
// scanned or decoded. A zero field disables that bound; use DefaultLimits
// for production streams rather than crafting permissive limits by hand.
//
// Exceeding a limit is a structural failure of the message (ErrTooDeep or
// ErrTooLarge), never a "need more bytes" condition: a declared length that
// cannot fit the budget fails as soon as the declaration is read.
type Limits struct {
	// MaxDepth is the maximum nesting of arrays and maps.
	MaxDepth int
	// MaxBytes is the maximum total encoded size of one message.
	MaxBytes int
}

// DefaultLimits returns the limits used when none are supplied: 1024 levels
// of nesting and a 1 GiB message budget.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth: 1024,
		MaxBytes: 1 << 30,
	}
}
