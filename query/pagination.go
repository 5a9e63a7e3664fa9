package query

// Pagination is the envelope metadata reported with every findAll.
type Pagination struct {
	Total  int64 `json:"total"`
	Page   int   `json:"page"`
	Pages  int   `json:"pages"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPagination computes the envelope for a result set. The returned
// count is passed in so an undercounting total can be corrected upward;
// the count query and the filter path have disagreed in the past, and
// until that is root-caused the larger number wins.
func NewPagination(total int64, limit, offset, returned int) Pagination {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if int64(returned) > total-int64(offset) {
		total = int64(offset + returned)
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	page := offset/limit + 1
	return Pagination{
		Total:  total,
		Page:   page,
		Pages:  pages,
		Limit:  limit,
		Offset: offset,
	}
}

// HasNext reports whether a further page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}
