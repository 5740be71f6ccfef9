package game

// Capabilities lists the player actions legal in the current state. It is
// derived on demand and never stored.
type Capabilities struct {
	CanHit       bool `json:"can_hit"`
	CanStand     bool `json:"can_stand"`
	CanDouble    bool `json:"can_double"`
	CanSplit     bool `json:"can_split"`
	CanSurrender bool `json:"can_surrender"`
}

// Capabilities computes the action flags for the active hand.
func (s *RoundState) Capabilities() Capabilities {
	h := s.ActiveHand()
	if h == nil || h.IsDone() {
		return Capabilities{}
	}
	return Capabilities{
		CanHit:       true,
		CanStand:     true,
		CanDouble:    s.canDouble(h),
		CanSplit:     len(s.Hands) < s.Rules.MaxHands() && h.CanSplit(),
		CanSurrender: s.canSurrender(h),
	}
}

func (s *RoundState) canDouble(h *Hand) bool {
	if len(h.Cards) != 2 {
		return false
	}
	if h.Split && !s.Rules.DoubleAfterSplit {
		return false
	}
	return s.Rules.DoubleOn.Allows(h.Score())
}

func (s *RoundState) canSurrender(h *Hand) bool {
	onlyHand := len(s.Hands) == 1 && !h.Split
	switch s.Rules.Surrender {
	case SurrenderEarly:
		return onlyHand && len(h.Cards) == 2
	case SurrenderLate:
		return onlyHand
	default:
		return false
	}
}
