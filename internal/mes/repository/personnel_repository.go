package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// PersonnelRepository 人员仓库
type PersonnelRepository struct {
	db *gorm.DB
}

func NewPersonnelRepository(db *gorm.DB) *PersonnelRepository {
	return &PersonnelRepository{db: db}
}

func (r *PersonnelRepository) Create(ctx context.Context, person *entity.Personnel) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PersonnelRepository) FindAll(ctx context.Context) ([]entity.Personnel, error) {
	var people []entity.Personnel
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&people).Error
	return people, err
}

// FindByEmployeeID 根据工号查找人员
func (r *PersonnelRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*entity.Personnel, error) {
	var person entity.Personnel
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &person, nil
}

// FindByEmployeeIDAndRole 根据工号+角色查找人员（授权用）
func (r *PersonnelRepository) FindByEmployeeIDAndRole(ctx context.Context, employeeID, role string) (*entity.Personnel, error) {
	var person entity.Personnel
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND role = ?", employeeID, role).
		First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &person, nil
}

// FindByTokenAndRole 根据工牌二维码+角色查找人员
func (r *PersonnelRepository) FindByTokenAndRole(ctx context.Context, token, role string) (*entity.Personnel, error) {
	var person entity.Personnel
	err := r.db.WithContext(ctx).
		Where("qr_token = ? AND role = ?", token, role).
		First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &person, nil
}

// FindByToken 根据工牌二维码查找人员
func (r *PersonnelRepository) FindByToken(ctx context.Context, token string) (*entity.Personnel, error) {
	var person entity.Personnel
	err := r.db.WithContext(ctx).Where("qr_token = ?", token).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &person, nil
}

// FindByIDs 批量查找人员（追溯报表用）
func (r *PersonnelRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Personnel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var people []entity.Personnel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&people).Error
	return people, err
}
