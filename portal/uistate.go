package portal

import (
	"sync"
	"time"
)

// modalClearDelay is how long a closed modal keeps its book ID so an exit
// animation can still render it.
const modalClearDelay = 300 * time.Millisecond

// UIStore holds ephemeral, session-only presentation state: the active
// detail-modal target and the transient toast. Nothing here is persisted.
//
// Both deferred transitions (toast auto-dismiss, delayed modal-ID clear)
// are cancellable: a new toast stops the previous dismiss timer and a
// reopened modal stops a pending clear, so a stale timer can never blank
// newer state.
type UIStore struct {
	mu sync.Mutex

	toast      *Toast
	toastTimer *time.Timer

	modalOpen     bool
	currentBookID int
	modalTimer    *time.Timer
}

func NewUIStore() *UIStore {
	return &UIStore{}
}

// Dispose stops any outstanding timers. The store must not be used after.
func (u *UIStore) Dispose() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopToastTimer()
	u.stopModalTimer()
	u.toast = nil
	u.modalOpen = false
	u.currentBookID = 0
}

// ---------------------------------------------------------------------------
// Toast
// ---------------------------------------------------------------------------

// ShowToast replaces any current toast and schedules its dismissal after
// duration. A non-positive duration falls back to DefaultToastDuration.
// There is no queue; the previous toast and its timer are dropped.
func (u *UIStore) ShowToast(message string, typ ToastType, duration time.Duration) {
	if typ == "" {
		typ = ToastSuccess
	}
	if duration <= 0 {
		duration = DefaultToastDuration
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.stopToastTimer()
	toast := &Toast{Message: message, Type: typ, Duration: duration}
	u.toast = toast
	u.toastTimer = time.AfterFunc(duration, func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		// Only clear the toast this timer was armed for.
		if u.toast == toast {
			u.toast = nil
			u.toastTimer = nil
		}
	})
}

// Toast returns the active toast, if any.
func (u *UIStore) Toast() (Toast, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.toast == nil {
		return Toast{}, false
	}
	return *u.toast, true
}

// stopToastTimer requires u.mu held.
func (u *UIStore) stopToastTimer() {
	if u.toastTimer != nil {
		u.toastTimer.Stop()
		u.toastTimer = nil
	}
}

// ---------------------------------------------------------------------------
// Detail modal
// ---------------------------------------------------------------------------

// OpenModal targets the modal at bookID and opens it. A clear pending from
// an earlier CloseModal is cancelled so it cannot wipe the new target.
func (u *UIStore) OpenModal(bookID int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopModalTimer()
	u.currentBookID = bookID
	u.modalOpen = true
}

// CloseModal closes the modal immediately but keeps the current book ID for
// modalClearDelay.
func (u *UIStore) CloseModal() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.modalOpen = false
	u.stopModalTimer()
	u.modalTimer = time.AfterFunc(modalClearDelay, func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if !u.modalOpen {
			u.currentBookID = 0
		}
		u.modalTimer = nil
	})
}

// IsModalOpen reports whether the detail modal is open.
func (u *UIStore) IsModalOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.modalOpen
}

// CurrentBookID returns the modal's target book, if one is set.
func (u *UIStore) CurrentBookID() (int, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.currentBookID == 0 {
		return 0, false
	}
	return u.currentBookID, true
}

// stopModalTimer requires u.mu held.
func (u *UIStore) stopModalTimer() {
	if u.modalTimer != nil {
		u.modalTimer.Stop()
		u.modalTimer = nil
	}
}
