package cache

// Sealable marks artifact types that can be locked against mutation. The
// cache seals such artifacts at first storage; the marker is how client
// libraries detect writes to an artifact that is shared through the cache.
type Sealable interface {
	// Seal locks the artifact. Must be idempotent.
	Seal()

	// Sealed reports whether the artifact has been locked.
	Sealed() bool
}

// seal locks artifact if it opts in to sealing.
func seal(artifact any) {
	if s, ok := artifact.(Sealable); ok {
		s.Seal()
	}
}
