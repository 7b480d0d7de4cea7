package cashback

import "fmt"

// AddCaller grants addr the right to trigger accruals. Owner-only; adding an
// already-whitelisted caller fails with ErrDuplicateCaller.
func (e *Engine) AddCaller(st EngineState, caller, addr string) error {
	if err := requireOwner(st, caller); err != nil {
		return err
	}
	list, err := st.WhitelistedCallers()
	if err != nil {
		return fmt.Errorf("cashback: load whitelist: %w", err)
	}
	for _, existing := range list {
		if existing == addr {
			return fmt.Errorf("%w: %s", ErrDuplicateCaller, addr)
		}
	}
	if err := st.SetWhitelistedCallers(append(list, addr)); err != nil {
		return fmt.Errorf("cashback: store whitelist: %w", err)
	}
	e.emit(newCallerWhitelistedEvent(addr))
	return nil
}

// RemoveCaller revokes addr's accrual rights. Owner-only; removing an absent
// caller fails with ErrUnknownCaller.
func (e *Engine) RemoveCaller(st EngineState, caller, addr string) error {
	if err := requireOwner(st, caller); err != nil {
		return err
	}
	list, err := st.WhitelistedCallers()
	if err != nil {
		return fmt.Errorf("cashback: load whitelist: %w", err)
	}
	filtered := make([]string, 0, len(list))
	found := false
	for _, existing := range list {
		if existing == addr {
			found = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownCaller, addr)
	}
	if err := st.SetWhitelistedCallers(filtered); err != nil {
		return fmt.Errorf("cashback: store whitelist: %w", err)
	}
	e.emit(newCallerRemovedEvent(addr))
	return nil
}

// IsAuthorized reports whether addr may trigger accruals.
func (e *Engine) IsAuthorized(st EngineState, addr string) (bool, error) {
	list, err := st.WhitelistedCallers()
	if err != nil {
		return false, fmt.Errorf("cashback: load whitelist: %w", err)
	}
	for _, existing := range list {
		if existing == addr {
			return true, nil
		}
	}
	return false, nil
}
