package catalog

// Favorites is an insertion-ordered set of product snapshots keyed by UUID.
type Favorites []Product

func (f Favorites) Contains(uuid string) bool {
	_, ok := FindByUUID(f, uuid)
	return ok
}

// ToggleFavorite adds a snapshot of p when on is true and removes the entry
// with p's UUID otherwise. The receiver set is left untouched; repeating the
// same call yields the same set.
func ToggleFavorite(favorites Favorites, p Product, on bool) Favorites {
	if on {
		if favorites.Contains(p.UUID) {
			return append(Favorites(nil), favorites...)
		}
		out := make(Favorites, 0, len(favorites)+1)
		out = append(out, favorites...)
		return append(out, p)
	}
	return Favorites(RemoveByUUID(favorites, p.UUID))
}
