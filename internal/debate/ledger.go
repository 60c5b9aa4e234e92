package debate

// joinLocked adds username to side. Joining the side the user is already on
// is a no-op; joining the opposite side is refused.
func (t *Topic) joinLocked(username string, side Side) error {
	if _, ok := t.roster(side.Opposite())[username]; ok {
		return ErrOppositeSide
	}
	t.roster(side)[username] = struct{}{}
	if _, ok := t.conns[username]; ok {
		t.conns[username] = side
	}
	return nil
}

// leaveLocked removes username from whichever roster holds it and reports
// the side it was removed from, or "" if it was not a member.
func (t *Topic) leaveLocked(username string) (Side, error) {
	if username == t.creator {
		return "", ErrCreatorLeave
	}
	side := t.sideOfLocked(username)
	if side != "" {
		delete(t.roster(side), username)
	}
	return side, nil
}
