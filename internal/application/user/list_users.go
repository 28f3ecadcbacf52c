package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// ListUsersUseCase 用户列表用例（管理端）
// 管理员权限由路由层的RequireAdmin中间件保证，这里不再重复校验
type ListUsersUseCase struct {
	userRepo user.Repository
}

// NewListUsersUseCase 创建用户列表用例
func NewListUsersUseCase(userRepo user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// ListUsersRequest 用户列表请求
type ListUsersRequest struct {
	Keyword  string
	Page     int
	PageSize int
}

// ListUsersResponse 用户列表响应
type ListUsersResponse struct {
	Users    []*UserInfo `json:"users"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Execute 分页查询用户列表，keyword模糊匹配邮箱或昵称
func (uc *ListUsersUseCase) Execute(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := uc.userRepo.List(ctx, req.Keyword, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		info := toUserInfo(u)
		infos = append(infos, &info)
	}

	return &ListUsersResponse{
		Users:    infos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
