package service

// PageSize is the number of posts on every feed page.
const PageSize = 10

// pageWindow is the slice of an ordered result a page covers.
type pageWindow struct {
	Page       int
	Size       int
	Offset     int
	TotalPages int
}

// newPageWindow clamps the requested page into [1, totalPages]. An empty
// result has zero pages and reports page 1.
func newPageWindow(requested int, total int64) pageWindow {
	size := PageSize
	totalPages := int((total + int64(size) - 1) / int64(size))

	page := requested
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		page = 1
	}

	return pageWindow{
		Page:       page,
		Size:       size,
		Offset:     (page - 1) * size,
		TotalPages: totalPages,
	}
}

// bounds returns the [start, end) indexes of the window in a slice of n items.
func (w pageWindow) bounds(n int) (int, int) {
	start := w.Offset
	if start > n {
		start = n
	}
	end := start + w.Size
	if end > n {
		end = n
	}
	return start, end
}
