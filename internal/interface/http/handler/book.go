package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	getBookUseCase     *appbook.GetBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	updateBookUseCase  *appbook.UpdateBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		getBookUseCase:     getBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		updateBookUseCase:  updateBookUseCase,
	}
}

// PublishBook 发布图书(上架)
// @Summary      发布图书
// @Description  发布图书商品上架,预告图书(is_upcoming=true)不可下单
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Genre:       req.Genre,
		Price:       req.Price,
		Stock:       req.Stock,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		IsUpcoming:  req.IsUpcoming,
		PublisherID: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toBookResponse(result)
	response.Success(c, &resp)
}

// GetBook 查询图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toBookResponse(result)
	response.Success(c, &resp)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  支持分页、关键词搜索、分类过滤、排序
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码,默认1"
// @Param        page_size query int false "每页数量,默认20"
// @Param        keyword query string false "搜索关键词(标题/作者/出版社)"
// @Param        genre query string false "分类"
// @Param        upcoming query bool false "按是否预告过滤"
// @Param        sort_by query string false "排序" Enums(price_asc, price_desc, created_at_desc)
// @Success      200 {object} response.Response{data=dto.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Genre:    req.Genre,
		Upcoming: req.Upcoming,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, b := range result.List {
		list[i] = dto.BookListItem{
			ID:         b.ID,
			ISBN:       b.ISBN,
			Title:      b.Title,
			Author:     b.Author,
			Publisher:  b.Publisher,
			Genre:      b.Genre,
			Price:      b.Price,
			PriceYuan:  dto.FormatPriceYuan(b.Price),
			Stock:      b.Stock,
			CoverURL:   b.CoverURL,
			IsUpcoming: b.IsUpcoming,
			CreatedAt:  b.CreatedAt,
		}
	}

	response.Success(c, &dto.ListBooksResponse{
		List:       list,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// UpdateBook 更新图书信息(部分更新)
// @Summary      更新图书
// @Description  发布者本人或管理员;只更新请求中出现的字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "更新内容"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      401 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:          id,
		UserID:      middleware.MustGetUserID(c),
		IsAdmin:     middleware.GetIsAdmin(c),
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Genre:       req.Genre,
		Price:       req.Price,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		IsUpcoming:  req.IsUpcoming,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toBookResponse(result)
	response.Success(c, &resp)
}

// RestockBook 补充库存
// @Summary      补货
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RestockBookRequest true "补货数量"
// @Success      200 {object} response.Response "补货成功"
// @Router       /api/v1/books/{id}/restock [put]
func (h *BookHandler) RestockBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.RestockBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	err := h.updateBookUseCase.Restock(c.Request.Context(), id,
		middleware.MustGetUserID(c), middleware.GetIsAdmin(c), req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      401 {object} response.Response "无权操作"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.updateBookUseCase.Delete(c.Request.Context(), id,
		middleware.MustGetUserID(c), middleware.GetIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func toBookResponse(b *appbook.BookDetail) dto.BookResponse {
	return dto.BookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Genre:       b.Genre,
		Price:       b.Price,
		PriceYuan:   dto.FormatPriceYuan(b.Price),
		Stock:       b.Stock,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		IsUpcoming:  b.IsUpcoming,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt,
	}
}

// parseIDParam 解析路径中的:id参数
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
