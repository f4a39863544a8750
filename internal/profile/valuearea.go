package profile

// ValueArea is a contiguous bin window grown outward from the VPOC bin.
type ValueArea struct {
	LowIdx  int
	HighIdx int
	Volume  float64
}

// ExpandValueArea grows the window [LowIdx, HighIdx] outward from
// vpocIdx until it holds at least pct percent of the total volume.
// Each step adds whichever neighbor bin carries more volume; ties
// expand upward. A side whose boundary is exhausted stops competing and
// the other side keeps growing alone. When both boundaries are
// exhausted the widest achievable window is returned rather than an
// error: a slightly undersized value area is still useful to consumers.
//
// Expansion walks through empty bins: a zero-volume gap between the
// VPOC and a far cluster must not stop the window short of the target.
func ExpandValueArea(volumeAtPrice []float64, vpocIdx int, pct float64) ValueArea {
	n := len(volumeAtPrice)

	var total float64
	for _, vol := range volumeAtPrice {
		total += vol
	}
	target := total * pct / 100

	lowIdx, highIdx := vpocIdx, vpocIdx
	current := volumeAtPrice[vpocIdx]

	for current < target {
		upRoom := highIdx < n-1
		downRoom := lowIdx > 0
		if !upRoom && !downRoom {
			break
		}

		var upper, lower float64
		if upRoom {
			upper = volumeAtPrice[highIdx+1]
		}
		if downRoom {
			lower = volumeAtPrice[lowIdx-1]
		}

		if upRoom && (upper >= lower || !downRoom) {
			highIdx++
			current += upper
		} else {
			lowIdx--
			current += lower
		}
	}

	return ValueArea{LowIdx: lowIdx, HighIdx: highIdx, Volume: current}
}
