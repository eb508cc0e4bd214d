package ledstrip

//Validation reports how an input was handled. Invalid input never produces an error, it is
//either clamped into range or the operation is skipped.
type Validation uint8

//Valid Validations
const (
	Accepted Validation = iota // Input used as given
	Clamped                    // Input adjusted into range and used
	Rejected                   // Operation skipped, nothing changed
)

//String returns "accepted", "clamped" or "rejected".
func (v Validation) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Clamped:
		return "clamped"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

//OK is true unless the operation was skipped.
func (v Validation) OK() bool {
	return v != Rejected
}

// index i inside a view of n pixels
func checkIndex(i, n int) Validation {
	if i < 0 || i >= n {
		return Rejected
	}
	return Accepted
}

// clampValue clamps v into [low,high] and reports if it had to.
func clampValue(low, high, v int) (int, Validation) {
	c := clamp(low, high, v)
	if c != v {
		return c, Clamped
	}
	return c, Accepted
}

// clampRange fits start and length of a sub range into a parent of parentLen pixels.
// start ends up in [0,parentLen-1] and the range never exceeds the parent.
func clampRange(parentLen, start, length int) (int, int, Validation) {
	if parentLen <= 0 {
		if start == 0 && length == 0 {
			return 0, 0, Accepted
		}
		return 0, 0, Clamped
	}
	st, v1 := clampValue(0, parentLen-1, start)
	n, v2 := clampValue(0, parentLen-st, length)
	if v1 == Clamped || v2 == Clamped {
		return st, n, Clamped
	}
	return st, n, Accepted
}
