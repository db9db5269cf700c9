package users

// UnknownCallerID is the sentinel identity for requests whose token carries
// no usable subject. It never matches a store-assigned id, so every id-scoped
// operation denies it.
const UnknownCallerID int64 = -1

// OwnershipGuard decides whether an authenticated caller may act on a
// specific record. The policy is strict self-service: a caller owns exactly
// the record whose id equals their own, and nobody else's. There is no admin
// bypass.
type OwnershipGuard struct {
	logger Logger
}

// NewOwnershipGuard returns the resource ownership guard.
func NewOwnershipGuard(logger Logger) *OwnershipGuard {
	if logger == nil {
		logger = defLogger{}
	}
	return &OwnershipGuard{logger: logger}
}

// Authorize allows the operation iff the caller identity equals the target
// resource id. The UnknownCallerID sentinel always denies.
func (g *OwnershipGuard) Authorize(callerID, targetID int64) error {
	if callerID == UnknownCallerID || callerID != targetID {
		g.logger.Debug("ownership check denied", "caller_id", callerID, "target_id", targetID)
		return ownershipDenied(callerID, targetID)
	}
	return nil
}

func ownershipDenied(callerID, targetID int64) error {
	clone := ErrOwnershipRequired.Clone()
	if clone == nil {
		return ErrOwnershipRequired
	}
	return clone.WithMetadata(map[string]any{
		"caller_id": callerID,
		"target_id": targetID,
	})
}
