package symbols

// BucketCount is the fixed width of every scope map. Scopes hold few names,
// so maps never grow.
const BucketCount = 31

// Hash is the polynomial rolling hash h = c + 31*h over the bytes of name.
func Hash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = uint32(name[i]) + 31*h
	}
	return h
}

func bucketOf(name string) int {
	return int(Hash(name) % BucketCount)
}

// ScopeMap is one lexical scope: bucket heads of singly linked entry chains.
type ScopeMap struct {
	Buckets [BucketCount]EntryID
	Len     int
	Depth   int  // stack depth when opened, 1 for the outermost scope
	Closed  bool // popped from the stack; still retained
}
