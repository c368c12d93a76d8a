package war

// ExpandSlots emits one slot per remaining attack, in roster order, with ids
// counting up from zero.
func ExpandSlots(attackers []Attacker) []Slot {
	var slots []Slot
	for i, a := range attackers {
		for k := 0; k < a.AttacksRemaining; k++ {
			slots = append(slots, Slot{
				ID:         len(slots),
				OwnerName:  a.Name,
				OwnerRank:  a.Rank,
				OwnerIndex: i,
				OwnerPower: a.Power,
			})
		}
	}
	return slots
}
