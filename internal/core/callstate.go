package core

// NoCall is the CallState.Current sentinel meaning "between calls".
const NoCall = -1

// CallState is the per-process call machine described in spec §3/§4.7.
// Between calls Current is NoCall and FreeList is empty; during a call
// Current holds the in-flight export index and FreeList accumulates every
// address cabi_realloc has returned since entry, for post_call to release.
type CallState struct {
	Current  int
	FreeList []uint32

	// firstCallDone gates the one-shot RNG reseed described in spec §4.7
	// step 1 / §9 Open Question (b): reset on the first call only.
	firstCallDone bool
}

// NewCallState returns a CallState in the idle position.
func NewCallState() *CallState {
	return &CallState{Current: NoCall}
}

// Idle reports whether the machine is between calls.
func (c *CallState) Idle() bool {
	return c.Current == NoCall
}

// Track appends an address returned by the tracked reallocator.
func (c *CallState) Track(addr uint32) {
	c.FreeList = append(c.FreeList, addr)
}

// TakeFirstCall reports true exactly once across the CallState's lifetime,
// the first time it's invoked; every later call returns false.
func (c *CallState) TakeFirstCall() bool {
	if c.firstCallDone {
		return false
	}
	c.firstCallDone = true
	return true
}

// Reset clears the free-list and returns the machine to idle. Called by
// post_call after every tracked address has been released.
func (c *CallState) Reset() {
	c.Current = NoCall
	c.FreeList = c.FreeList[:0]
}
