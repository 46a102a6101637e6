package layout

// CarouselSlot is one position on the major god carousel.
type CarouselSlot struct {
	// Key is the major god key. Empty for the add slot.
	Key string `json:"key,omitempty"`
	// Offset is the signed distance from the active slot around the ring.
	Offset int `json:"offset"`
	// Active marks the selected god. The add slot is never active.
	Active bool `json:"active"`
	AddNew bool `json:"add_new,omitempty"`
}

// Carousel places the gods in keys, plus a trailing add slot, on a ring
// centred on active. Offsets are the shortest signed distance to the
// active slot; a slot exactly half a turn away keeps the sign of its
// index difference. When active is not in keys, offsets are taken
// relative to index -1 and no god is active.
func Carousel(keys []string, active string) []CarouselSlot {
	activeIndex := -1
	for i, k := range keys {
		if k == active {
			activeIndex = i
			break
		}
	}

	total := len(keys) + 1
	slots := make([]CarouselSlot, 0, total)
	for i, k := range keys {
		off := offset(i, activeIndex, total)
		slots = append(slots, CarouselSlot{Key: k, Offset: off, Active: off == 0})
	}
	off := offset(len(keys), activeIndex, total)
	slots = append(slots, CarouselSlot{Offset: off, AddNew: true})
	return slots
}

func offset(i, active, total int) int {
	raw := i - active
	half := float64(total) / 2
	if float64(raw) > half {
		raw -= total
	}
	if float64(raw) < -half {
		raw += total
	}
	return raw
}
