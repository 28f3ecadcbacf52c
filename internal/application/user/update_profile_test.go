package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// memUserRepo 内存版用户仓储(测试用)
type memUserRepo struct {
	nextID uint
	users  map[uint]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*user.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memUserRepo) List(ctx context.Context, keyword string, offset, limit int) ([]*user.User, int64, error) {
	// 按ID升序,分页结果可预测
	matched := make([]*user.User, 0, len(r.users))
	for id := uint(1); id < r.nextID; id++ {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if keyword != "" && !strings.Contains(u.Email, keyword) && !strings.Contains(u.Nickname, keyword) {
			continue
		}
		copied := *u
		matched = append(matched, &copied)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func strPtr(s string) *string { return &s }

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpire:  2 * time.Hour,
		RefreshTokenExpire: 7 * 24 * time.Hour,
	}
}

func seedUser(t *testing.T, repo *memUserRepo) uint {
	t.Helper()
	svc := user.NewService(repo)
	u, err := svc.Register(context.Background(), "reader@example.com", "Secret123", "读者小王")
	require.NoError(t, err)
	return u.ID
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemUserRepo()
	userID := seedUser(t, repo)
	uc := NewProfileUseCase(repo)

	t.Run("部分更新只修改提供的字段", func(t *testing.T) {
		info, err := uc.Update(context.Background(), UpdateProfileRequest{
			UserID:  userID,
			Address: strPtr("中关村大街1号"),
			Phone:   strPtr("13800138000"),
		})
		require.NoError(t, err)
		assert.Equal(t, "中关村大街1号", info.Address)
		assert.Equal(t, "13800138000", info.Phone)
		// 未提供的字段保持原值
		assert.Equal(t, "读者小王", info.Nickname)
	})

	t.Run("空字符串清空地址", func(t *testing.T) {
		info, err := uc.Update(context.Background(), UpdateProfileRequest{
			UserID:  userID,
			Address: strPtr(""),
		})
		require.NoError(t, err)
		assert.Empty(t, info.Address)
		assert.Equal(t, "13800138000", info.Phone)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := uc.Update(context.Background(), UpdateProfileRequest{
			UserID:   999,
			Nickname: strPtr("无名氏"),
		})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestGetProfile(t *testing.T) {
	repo := newMemUserRepo()
	userID := seedUser(t, repo)
	uc := NewProfileUseCase(repo)

	info, err := uc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", info.Email)
	assert.False(t, info.IsAdmin)
}

func TestChangePassword(t *testing.T) {
	repo := newMemUserRepo()
	userID := seedUser(t, repo)
	svc := user.NewService(repo)
	// AccessToken为空时不访问黑名单,无需Redis
	uc := NewChangePasswordUseCase(repo, svc, nil, testJWTConfig())

	t.Run("当前密码错误被拒绝", func(t *testing.T) {
		err := uc.Execute(context.Background(), ChangePasswordRequest{
			UserID:          userID,
			CurrentPassword: "WrongPass1",
			NewPassword:     "NewSecret456",
		})
		require.Error(t, err)
	})

	t.Run("修改成功后新密码可登录", func(t *testing.T) {
		err := uc.Execute(context.Background(), ChangePasswordRequest{
			UserID:          userID,
			CurrentPassword: "Secret123",
			NewPassword:     "NewSecret456",
		})
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "reader@example.com", "NewSecret456")
		assert.NoError(t, err)

		_, err = svc.Login(context.Background(), "reader@example.com", "Secret123")
		assert.Error(t, err)
	})
}
