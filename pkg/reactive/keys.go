package reactive

// LengthKey is the key under which arrays expose their length.
const LengthKey = "length"

// Sentinel is a reserved key that can never collide with a property name.
type Sentinel struct {
	name string
}

// String returns the sentinel's debug name.
func (s *Sentinel) String() string {
	return s.name
}

var (
	// RawKey is the reserved unwrap accessor: view.Get(RawKey) returns the
	// raw target without tracking.
	RawKey = &Sentinel{name: "raw"}

	// IterateKey is the structural key recorded by Keys(). Effects
	// subscribed to it re-run when a key is added or deleted.
	IterateKey = &Sentinel{name: "iterate"}
)

// computedValueKey is the key Computed values track on their anchor.
const computedValueKey = "value"
