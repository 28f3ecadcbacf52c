package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/logger"
)

// ChangePasswordUseCase 修改密码用例
// 先验证当前密码，再写入新密码的哈希，最后把当前Token拉黑强制重新登录
type ChangePasswordUseCase struct {
	userRepo     user.Repository
	userService  user.Service
	sessionStore *redis.SessionStore
	jwtCfg       config.JWTConfig
}

// NewChangePasswordUseCase 创建修改密码用例
func NewChangePasswordUseCase(
	userRepo user.Repository,
	userService user.Service,
	sessionStore *redis.SessionStore,
	jwtCfg config.JWTConfig,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userRepo:     userRepo,
		userService:  userService,
		sessionStore: sessionStore,
		jwtCfg:       jwtCfg,
	}
}

// ChangePasswordRequest 修改密码请求DTO
type ChangePasswordRequest struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
	AccessToken     string // 当前请求携带的Token,改密成功后拉黑
}

// Execute 执行修改密码
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, req ChangePasswordRequest) error {
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	// 必须先验证当前密码,防止拿到Token的人直接改密
	if err := uc.userService.ValidatePassword(u.Password, req.CurrentPassword); err != nil {
		return err
	}

	hashed, err := uc.userService.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	u.ChangePassword(hashed)
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return err
	}

	// 旧Token立即失效,失败只记日志(密码已改成功)
	if req.AccessToken != "" {
		if err := uc.sessionStore.AddToBlacklist(ctx, req.AccessToken, uc.jwtCfg.AccessTokenExpire); err != nil {
			logger.L().Warn("改密后拉黑Token失败", "user_id", req.UserID, "error", err)
		}
	}

	return nil
}
