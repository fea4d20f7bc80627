package hwaccess

// pageSpan returns the page-aligned base, the offset of phys inside the first
// page, and the page-rounded length needed to cover [phys, phys+size).
func pageSpan(phys uint64, size, pageSize int) (base uint64, delta, length int) {
	page := uint64(pageSize)
	base = phys &^ (page - 1)
	delta = int(phys - base)
	length = (delta + size + pageSize - 1) &^ (pageSize - 1)
	return base, delta, length
}
