package searcher

// Neighbor is a candidate reference point with its squared distance.
type Neighbor struct {
	Index    int32
	Distance float32
}

// Less reports whether (da, ia) ranks before (db, ib).
func Less(da float32, ia int32, db float32, ib int32) bool {
	aNaN, bNaN := da != da, db != db
	switch {
	case aNaN && bNaN:
		return ia < ib
	case aNaN:
		return false
	case bNaN:
		return true
	case da != db:
		return da < db
	}
	return ia < ib
}

func (n Neighbor) less(o Neighbor) bool {
	return Less(n.Distance, n.Index, o.Distance, o.Index)
}
