package searcher

// InsertionSelect moves the k best entries of the distance column to its
// front, sorted by Less, with their reference indices in ind[:k].
//
// dist is scratch: entries past k are left in an unspecified order. ind must
// hold at least k entries. Cost is O(n·k) in the worst case and O(n) once the
// kept set has settled, which suits the small k of brute-force search.
func InsertionSelect(dist []float32, ind []int32, k int) {
	n := len(dist)
	k = min(k, n)
	if k <= 0 {
		return
	}

	ind[0] = 0
	for i := 1; i < n; i++ {
		curD, curI := dist[i], int32(i)
		if i >= k && !Less(curD, curI, dist[k-1], ind[k-1]) {
			continue
		}

		j := min(i, k-1)
		for j > 0 && Less(curD, curI, dist[j-1], ind[j-1]) {
			dist[j] = dist[j-1]
			ind[j] = ind[j-1]
			j--
		}
		dist[j] = curD
		ind[j] = curI
	}
}
