package pool

// NaivePool spawns one goroutine per job and never reuses one. It exists
// alongside SharedQueuePool as the simplest possible Pool implementation —
// useful as a baseline and in tests where worker-count semantics don't
// matter.
type NaivePool struct{}

// NewNaivePool returns a NaivePool. It takes no arguments because it has no
// fixed capacity to configure.
func NewNaivePool() *NaivePool {
	return &NaivePool{}
}

// Spawn runs job on a brand new goroutine.
func (NaivePool) Spawn(job func()) {
	go job()
}
