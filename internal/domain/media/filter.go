package media

// Filter narrows catalog listings.
type Filter struct {
	Type      *Type
	Category  *string
	Tag       *string
	Available *bool
	Search    string
	Limit     int
	Offset    int
}

// NewFilter creates a filter with the default page size.
func NewFilter() *Filter {
	return &Filter{Limit: 10}
}

// WithType restricts results to a media type.
func (f *Filter) WithType(t Type) *Filter {
	f.Type = &t
	return f
}

// WithCategory restricts results to a category.
func (f *Filter) WithCategory(category string) *Filter {
	f.Category = &category
	return f
}

// WithTag restricts results to items carrying the tag.
func (f *Filter) WithTag(tag string) *Filter {
	f.Tag = &tag
	return f
}

// WithAvailable restricts results by availability.
func (f *Filter) WithAvailable(available bool) *Filter {
	f.Available = &available
	return f
}

// WithSearch matches title or author, case-insensitively.
func (f *Filter) WithSearch(search string) *Filter {
	f.Search = search
	return f
}

// WithPagination sets limit and offset.
func (f *Filter) WithPagination(limit, offset int) *Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}
