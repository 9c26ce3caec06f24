package core

// Signature describes one export's flattened ABI shape: an ordered
// parameter list, an optional scalar return, and the paramptr/retptr
// flags that say whether parameters or the return are passed by pointer
// into linear memory instead of flat registers. See spec §3 "Signature".
type Signature struct {
	Params   []CoreType
	HasRet   bool
	Ret      CoreType
	ParamPtr bool
	RetPtr   bool
	RetSize  int
}

// JSParamCount is the number of arguments the resolved JS function is
// actually invoked with: one address if ParamPtr, else one per declared
// param plus a trailing return-area address if RetPtr.
func (s Signature) JSParamCount() int {
	if s.ParamPtr {
		return 1
	}
	n := len(s.Params)
	if s.RetPtr {
		n++
	}
	return n
}

// ArgBufferWidth is the byte width of the flat (non-paramptr) argument
// buffer the ABI caller must supply.
func (s Signature) ArgBufferWidth() int {
	if s.ParamPtr {
		return 4 // one i32 address
	}
	w := 0
	for _, p := range s.Params {
		w += p.Width()
	}
	return w
}
