package profile

// VPOCIndex returns the index of the bin with the highest accumulated
// volume. The scan runs in ascending price order with a strict
// comparison, so ties resolve deterministically to the lowest price.
// All-zero input resolves to bin 0, which only occurs on a day with no
// traded volume.
func VPOCIndex(volumeAtPrice []float64) int {
	idx := 0
	maxVol := volumeAtPrice[0]
	for i, vol := range volumeAtPrice[1:] {
		if vol > maxVol {
			maxVol = vol
			idx = i + 1
		}
	}
	return idx
}
