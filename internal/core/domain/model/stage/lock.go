package stage

import (
	"fulfillment/internal/core/domain/model/kernel"
)

// LockRecord is the one-way commit flag on a lockable stage's decisions.
// Once locked, only an admin may alter the corresponding decision record;
// there is no unlock operation.
//
// The zero value is a valid unlocked record, which is also what a store
// reports for a stage that was never saved.
type LockRecord struct {
	locked   bool
	lockedBy kernel.ActorID
}

// NewLockRecord creates a committed lock owned by the acting user.
func NewLockRecord(lockedBy kernel.ActorID) (LockRecord, error) {
	if err := lockedBy.Validate(); err != nil {
		return LockRecord{}, err
	}
	return LockRecord{locked: true, lockedBy: lockedBy}, nil
}

// Unlocked returns the open lock record.
func Unlocked() LockRecord {
	return LockRecord{}
}

// Locked reports whether the stage's decisions are committed.
func (l LockRecord) Locked() bool {
	return l.locked
}

// LockedBy returns the actor that committed the lock.
// Zero value when the record is unlocked.
func (l LockRecord) LockedBy() kernel.ActorID {
	return l.lockedBy
}
