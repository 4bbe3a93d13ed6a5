package query

// paginate slices items[offset:offset+limit], clamping to bounds, mirroring
// the {total, limit, offset, result} shape the HTTP surface expects
// (spec.md §6.1).
func paginate[T any](items []T, offset, limit int) (page []T, total int) {
	total = len(items)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return items[offset:end], total
}
