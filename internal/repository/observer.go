package repository

// Observer mide operaciones logicas de base de datos.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type nopObserver struct{}

func (nopObserver) ObserveDB(_ string, fn func() error) error { return fn() }

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}
