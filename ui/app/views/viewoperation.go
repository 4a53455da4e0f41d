package views

import (
	"context"
	"sync"
)

// viewOperation runs a single engine operation at a time, which
// can be cancelled by the user.
type viewOperation struct {
	cancel context.CancelFunc
	lock   sync.Mutex

	root *Views
}

// newViewOperation returns a new operations manager.
func newViewOperation(root *Views) *viewOperation {
	return &viewOperation{root: root}
}

// startOperation sets up the cancellation handler, and starts the operation.
// Any error returned by the operation is displayed on the status bar.
func (v *viewOperation) startOperation(name string, dofunc func(ctx context.Context) error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.cancel != nil {
		v.root.status.InfoMessage("Operation still in progress", false)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	go func() {
		defer v.cancelOperation(true)

		if err := dofunc(ctx); err != nil {
			v.root.status.ErrorMessage(err)
			return
		}

		if name != "" {
			v.root.status.InfoMessage(name, false)
		}
	}()
}

// cancelOperation cancels the currently running operation.
func (v *viewOperation) cancelOperation(cancelfunc bool) {
	var cancel context.CancelFunc

	v.lock.Lock()
	defer v.lock.Unlock()

	if v.cancel == nil {
		return
	}

	cancel = v.cancel
	v.cancel = nil

	if cancelfunc {
		go cancel()
	}
}
