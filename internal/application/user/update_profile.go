package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// ProfileUseCase 个人资料用例(查询/部分更新)
type ProfileUseCase struct {
	userRepo user.Repository
}

// NewProfileUseCase 创建个人资料用例
func NewProfileUseCase(userRepo user.Repository) *ProfileUseCase {
	return &ProfileUseCase{userRepo: userRepo}
}

// Get 查询当前用户资料
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// UpdateProfileRequest 资料更新请求DTO
// 指针字段为nil表示不修改;空字符串是合法值(如清空地址)
type UpdateProfileRequest struct {
	UserID   uint
	Nickname *string
	Address  *string
	Phone    *string
}

// Update 部分更新当前用户资料
func (uc *ProfileUseCase) Update(ctx context.Context, req UpdateProfileRequest) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	u.ApplyPatch(user.Patch{
		Nickname: req.Nickname,
		Address:  req.Address,
		Phone:    req.Phone,
	})

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	info := toUserInfo(u)
	return &info, nil
}
