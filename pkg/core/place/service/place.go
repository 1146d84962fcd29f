package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/common/metrics"
	"staybook/pkg/core/place/model"
	"staybook/pkg/core/place/repository/dao"
)

type PlaceService struct {
	repo dao.PlaceRepository
}

func NewPlaceService(repo dao.PlaceRepository) *PlaceService {
	return &PlaceService{repo: repo}
}

func (s *PlaceService) Create(ctx context.Context, ownerID string, fields model.Fields) (*model.Place, error) {
	place := &model.Place{Owner: ownerID}
	place.Apply(fields)
	if err := place.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, place); err != nil {
		return nil, err
	}

	metrics.IncPlaceCreated()
	hlog.CtxInfof(ctx, "place created id=%s owner=%s", place.ID, ownerID)
	return place, nil
}

// Update 只有房源所有者可以修改，否则返回 ErrForbidden 且不写入
func (s *PlaceService) Update(ctx context.Context, callerID, placeID string, fields model.Fields) (*model.Place, error) {
	place, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}

	if place.Owner != callerID {
		hlog.CtxWarnf(ctx, "place update rejected id=%s caller=%s", placeID, callerID)
		return nil, apperr.ErrForbidden
	}

	place.Apply(fields)
	if err := place.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *PlaceService) GetByID(ctx context.Context, id string) (*model.Place, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PlaceService) ListAll(ctx context.Context) ([]model.Place, error) {
	return s.repo.FindAll(ctx)
}

func (s *PlaceService) ListByOwner(ctx context.Context, ownerID string) ([]model.Place, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}
