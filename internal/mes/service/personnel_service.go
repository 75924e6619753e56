package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/shared/qrimg"
)

// PersonnelService 生产人员服务，同时承担扫码授权职责
type PersonnelService struct {
	repo     *repository.PersonnelRepository
	renderer *qrimg.Renderer
}

func NewPersonnelService(repo *repository.PersonnelRepository, renderer *qrimg.Renderer) *PersonnelService {
	return &PersonnelService{repo: repo, renderer: renderer}
}

// CreatePersonnelRequest 创建人员请求
type CreatePersonnelRequest struct {
	Name              string `json:"name" binding:"required"`
	EmployeeID        string `json:"employee_id" binding:"required"`
	Role              string `json:"role" binding:"required"`
	AllowedOperations string `json:"allowed_operations"`
	QRToken           string `json:"qr_token"`
}

// PersonnelWithQR 人员 + 工牌二维码图片
type PersonnelWithQR struct {
	entity.Personnel
	QRImage string `json:"qr_image"`
}

// Create 创建人员并签发工牌二维码。工牌token可指定（预印工牌），
// 缺省时签发新token。
func (s *PersonnelService) Create(ctx context.Context, req *CreatePersonnelRequest) (*PersonnelWithQR, error) {
	if _, err := s.repo.FindByEmployeeID(ctx, req.EmployeeID); err == nil {
		return nil, fmt.Errorf("%w: employee_id already exists", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	qrToken := req.QRToken
	if qrToken == "" {
		qrToken = NewToken()
	} else {
		if _, err := s.repo.FindByToken(ctx, qrToken); err == nil {
			return nil, fmt.Errorf("%w: qr_token already in use", ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	person := &entity.Personnel{
		ID:                NewID(),
		Name:              req.Name,
		EmployeeID:        req.EmployeeID,
		Role:              req.Role,
		AllowedOperations: req.AllowedOperations,
		QRToken:           qrToken,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, person.QRToken)
	if err != nil {
		return nil, err
	}
	return &PersonnelWithQR{Personnel: *person, QRImage: img}, nil
}

// List 人员列表
func (s *PersonnelService) List(ctx context.Context) ([]entity.Personnel, error) {
	return s.repo.FindAll(ctx)
}

// Require 校验工号对应人员存在且具备指定角色。
// 工号为空返回 ErrBadRequest，人员不存在或角色不符返回 ErrForbidden。
// 所有写操作在任何变更之前先走这条校验。
func (s *PersonnelService) Require(ctx context.Context, role, employeeID string) (*entity.Personnel, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee_id is required", ErrBadRequest)
	}
	person, err := s.repo.FindByEmployeeIDAndRole(ctx, employeeID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s authorization failed for %s", ErrForbidden, role, employeeID)
		}
		return nil, err
	}
	return person, nil
}

// ResolveOperator 解析报工操作工。优先工牌二维码，其次工号：
// 二维码路径查不到返回 ErrNotFound；工号路径查不到或角色不符返回
// ErrForbidden；两者都为空返回 ErrBadRequest，报工必须落到人。
func (s *PersonnelService) ResolveOperator(ctx context.Context, qrToken, employeeID string) (*entity.Personnel, error) {
	if qrToken != "" {
		person, err := s.repo.FindByTokenAndRole(ctx, qrToken, entity.RoleOperator)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: operator badge not recognized", ErrNotFound)
			}
			return nil, err
		}
		return person, nil
	}
	if employeeID != "" {
		person, err := s.repo.FindByEmployeeIDAndRole(ctx, employeeID, entity.RoleOperator)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: operator authorization failed for %s", ErrForbidden, employeeID)
			}
			return nil, err
		}
		return person, nil
	}
	return nil, fmt.Errorf("%w: operator_qr_token or employee_id is required", ErrBadRequest)
}
