package postgres

import (
	"errors"

	"github.com/frahmantamala/timesheet-management/internal/user"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.First(&row, "id = ? AND is_active = true", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) GetPermissions(userID int64) ([]string, error) {
	var names []string
	query := `SELECT p.name
	         FROM permissions p
	         JOIN user_permissions up ON p.id = up.permission_id
	         WHERE up.user_id = ?`
	if err := r.db.Raw(query, userID).Scan(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
