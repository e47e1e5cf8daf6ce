package service

import (
	"context"
	"fmt"

	"planmate/internal/model"
	"planmate/internal/repository"
)

// TagService provides CRUD over a user's own tags.
type TagService struct {
	repo *repository.TagRepository
}

func NewTagService(repo *repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

func (s *TagService) CreateTag(ctx context.Context, user *model.User, name, color string) (*model.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}
	tag := model.Tag{UserID: user.ID, Name: name, Color: color}
	if err := s.repo.Create(ctx, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) List(ctx context.Context, user *model.User) ([]model.Tag, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

func (s *TagService) UpdateTag(ctx context.Context, user *model.User, tagID uint, name, color string) (*model.Tag, error) {
	tag, err := s.ownTag(ctx, user, tagID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		tag.Name = name
	}
	if color != "" {
		tag.Color = color
	}
	if err := s.repo.Save(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, user *model.User, tagID uint) error {
	tag, err := s.ownTag(ctx, user, tagID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tag)
}

func (s *TagService) ownTag(ctx context.Context, user *model.User, tagID uint) (*model.Tag, error) {
	tag, err := s.repo.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.UserID != user.ID {
		return nil, ErrPermissionDenied
	}
	return tag, nil
}
