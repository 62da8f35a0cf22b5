package media

// Largest returns the size with the most bytes. On a tie the one listed
// last wins.
func Largest(sizes []PhotoSize) (PhotoSize, bool) {
	var best PhotoSize
	for _, size := range sizes {
		if best == nil || size.Size() >= best.Size() {
			best = size
		}
	}
	return best, best != nil
}
