package repository

import (
	"engage-go/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据 ID 查询用户（排除已删除）
func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ? AND is_delete = 0", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 根据用户名查询；includeDeleted 为 true 时包括已注销用户（登录时区分提示用）
func (r *UserRepository) FindByUsername(username string, includeDeleted bool) (*model.User, error) {
	q := r.db.Where("user_name = ?", username)
	if !includeDeleted {
		q = q.Where("is_delete = 0")
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// UsernameTaken 用户名是否被占用；已注销用户仍占用用户名（唯一索引不区分删除标识）
func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("user_name = ?", username).Count(&count).Error
	return count > 0, err
}

// UsernamesByIDs 批量查询用户名（包含已删除用户，评论作者展示用）
func (r *UserRepository) UsernamesByIDs(ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []model.User
	if err := r.db.Select("id", "user_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.UserName
	}
	return names, nil
}

// SoftDelete 标记用户为已删除
func (r *UserRepository) SoftDelete(id int64) error {
	result := r.db.Model(&model.User{}).Where("id = ? AND is_delete = 0", id).Update("is_delete", 1)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
