package dto

import "fmt"

// PublishBookRequest HTTP上架请求
type PublishBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"required,max=100" example:"人民邮电出版社"`
	Genre       string `json:"genre" binding:"omitempty,max=50" example:"计算机"`
	Price       int64  `json:"price" binding:"required,min=1,max=999999" example:"5900"` // 价格(分),59.00元
	Stock       int    `json:"stock" binding:"min=0" example:"100"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description string `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
	IsUpcoming  bool   `json:"is_upcoming" example:"false"` // 预告图书不可下单
}

// UpdateBookRequest HTTP部分更新请求
// 指针字段缺省(nil)表示不修改;显式传零值(如空字符串)是合法的更新
type UpdateBookRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Author      *string `json:"author" binding:"omitempty,max=100"`
	Publisher   *string `json:"publisher" binding:"omitempty,max=100"`
	Genre       *string `json:"genre" binding:"omitempty,max=50"`
	Price       *int64  `json:"price" binding:"omitempty,min=1,max=999999"`
	CoverURL    *string `json:"cover_url" binding:"omitempty,max=500"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	IsUpcoming  *bool   `json:"is_upcoming"`
}

// RestockBookRequest HTTP补货请求
type RestockBookRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99999"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID          uint   `json:"id" example:"1"`
	ISBN        string `json:"isbn" example:"9787115428028"`
	Title       string `json:"title" example:"Go语言实战"`
	Author      string `json:"author" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" example:"人民邮电出版社"`
	Genre       string `json:"genre" example:"计算机"`
	Price       int64  `json:"price" example:"5900"`       // 价格(分)
	PriceYuan   string `json:"price_yuan" example:"59.00"` // 价格(元),方便前端显示
	Stock       int    `json:"stock" example:"100"`
	CoverURL    string `json:"cover_url" example:"https://example.com/cover.jpg"`
	Description string `json:"description" example:"这是一本关于Go语言的实战书籍"`
	IsUpcoming  bool   `json:"is_upcoming" example:"false"`
	PublisherID uint   `json:"publisher_id" example:"1"`
	CreatedAt   string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项
// 列表查询时不返回Description字段(减少数据传输量)
type BookListItem struct {
	ID         uint   `json:"id" example:"1"`
	ISBN       string `json:"isbn" example:"9787115428028"`
	Title      string `json:"title" example:"Go语言实战"`
	Author     string `json:"author" example:"威廉·肯尼迪"`
	Publisher  string `json:"publisher" example:"人民邮电出版社"`
	Genre      string `json:"genre" example:"计算机"`
	Price      int64  `json:"price" example:"5900"`
	PriceYuan  string `json:"price_yuan" example:"59.00"`
	Stock      int    `json:"stock" example:"100"`
	CoverURL   string `json:"cover_url" example:"https://example.com/cover.jpg"`
	IsUpcoming bool   `json:"is_upcoming" example:"false"`
	CreatedAt  string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	Genre    string `form:"genre" binding:"omitempty,max=50" example:"计算机"`
	Upcoming *bool  `form:"upcoming"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc" example:"created_at_desc"`
}

// ListBooksResponse HTTP图书列表响应
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total" example:"100"`
	Page       int            `json:"page" example:"1"`
	PageSize   int            `json:"page_size" example:"20"`
	TotalPages int            `json:"total_pages" example:"5"`
}

// FormatPriceYuan 格式化价格(分→元)
// 例如:5900分 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
