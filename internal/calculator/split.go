package calculator

// Split says who shares one expense: either the whole roster or an explicit
// subset of it. The zero value means the whole roster.
type Split struct {
	members []string
}

// SplitAll shares an expense among everyone on the roster at computation time.
func SplitAll() Split {
	return Split{}
}

// SplitAmong shares an expense among the named participants only.
// Calling it with no names yields an explicit empty subset, which
// ValidateExpense rejects and ComputeBalances skips.
func SplitAmong(names ...string) Split {
	members := make([]string, len(names))
	copy(members, names)
	return Split{members: members}
}

// SplitFromNames maps the stored form of a split (nil or empty means
// everyone) onto a Split.
func SplitFromNames(names []string) Split {
	if len(names) == 0 {
		return SplitAll()
	}
	return SplitAmong(names...)
}

// IsAll reports whether the expense is shared by the whole roster.
func (s Split) IsAll() bool {
	return s.members == nil
}

// Members returns a copy of the explicit subset, or nil for SplitAll.
func (s Split) Members() []string {
	if s.members == nil {
		return nil
	}
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// Targets resolves the split against a roster.
func (s Split) Targets(roster Roster) []string {
	if s.IsAll() {
		return roster.Names()
	}
	return s.Members()
}

// Normalize collapses a subset that covers exactly the roster into SplitAll.
// Both forms produce identical balances.
func (s Split) Normalize(roster Roster) Split {
	if s.IsAll() || len(s.members) != roster.Len() {
		return s
	}
	seen := make(map[string]bool, len(s.members))
	for _, m := range s.members {
		if !roster.Contains(m) || seen[m] {
			return s
		}
		seen[m] = true
	}
	return SplitAll()
}

