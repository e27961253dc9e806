package loader

import (
	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
)

// Acknowledge records that the store finished an action this instance
// dispatched. Acknowledgements only matter with WithPendingGuard; repeated
// acknowledgements of the same action count once.
func (i *Instance) Acknowledge(a Action) error {
	key, err := KeyOf(a)
	if err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.dispatched.Has(key) {
		return apperrors.WithMetadata(apperrors.CodeActionNotTracked, "acknowledged action was not dispatched",
			map[string]string{"Key": string(key)})
	}
	i.acked[key] = struct{}{}
	return nil
}

// Pending returns how many dispatched actions await acknowledgement.
func (i *Instance) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dispatched.Len() - len(i.acked)
}

// pending reports whether the pending guard holds the instance busy.
func (i *Instance) pending() bool {
	if !i.factory.decorator.opts.pendingGuard {
		return false
	}
	return i.Pending() > 0
}
