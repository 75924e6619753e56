package service

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// ProcessService 工序基础数据服务
type ProcessService struct {
	repo *repository.ProcessRepository
}

func NewProcessService(repo *repository.ProcessRepository) *ProcessService {
	return &ProcessService{repo: repo}
}

// CreateProcessRequest 创建工序请求
type CreateProcessRequest struct {
	Name        string `json:"name" binding:"required"`
	Sequence    int    `json:"sequence"`
	Description string `json:"description"`
}

// Create 创建工序
func (s *ProcessService) Create(ctx context.Context, req *CreateProcessRequest) (*entity.Process, error) {
	process := &entity.Process{
		ID:          NewID(),
		Name:        req.Name,
		Sequence:    req.Sequence,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// List 工序列表，按 sequence 升序
func (s *ProcessService) List(ctx context.Context) ([]entity.Process, error) {
	return s.repo.FindAll(ctx)
}
