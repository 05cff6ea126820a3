package request

// ByIDRequest binds an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the pagination fields shared by list endpoints.
type ListParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize applies the default page and page size.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}
