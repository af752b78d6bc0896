package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/api/dto"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/tags",
		Summary:     "List tags",
		Description: "Returns every tag with the products carrying it",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag with the products carrying it",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/tags",
		Summary:       "Create tag",
		Description:   "Creates a tag with a unique name",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPut,
		Path:        "/api/tags/{id}",
		Summary:     "Rename tag",
		Description: "Renames a tag and reports the previous name",
		Tags:        []string{"Tags"},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and detaches it from every product",
		Tags:        []string{"Tags"},
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagRequest is the request body for creating or renaming a tag.
type TagRequest struct {
	TagName string `json:"tag_name" minLength:"1" maxLength:"255" doc:"Tag name"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body []dto.Tag
}

// TagOutput wraps a single tag for Huma.
type TagOutput struct {
	Body dto.Tag
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	dto.IDParam
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body TagRequest
}

// UpdateTagInput wraps the rename request for Huma.
type UpdateTagInput struct {
	dto.IDParam
	Body TagRequest
}

// TagRenameResponse reports a rename.
type TagRenameResponse struct {
	Message string  `json:"message" doc:"Success message"`
	Was     string  `json:"was" doc:"Name before the rename"`
	Now     dto.Tag `json:"now" doc:"Tag after the rename"`
}

// UpdateTagOutput wraps the rename response for Huma.
type UpdateTagOutput struct {
	Body TagRenameResponse
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	dto.IDParam
}

// TagDeleteResponse reports a deletion.
type TagDeleteResponse struct {
	Message string  `json:"message" doc:"Success message"`
	Tag     dto.Tag `json:"tag" doc:"The tag as it was before deletion"`
}

// DeleteTagOutput wraps the delete response for Huma.
type DeleteTagOutput struct {
	Body TagDeleteResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: dto.NewTags(tags)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.GetTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: dto.NewTag(t)}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.CreateTag(ctx, service.TagRequest{Name: input.Body.TagName})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: dto.NewTag(t)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*UpdateTagOutput, error) {
	res, err := s.services.Tag.UpdateTag(ctx, input.ID, service.TagRequest{Name: input.Body.TagName})
	if err != nil {
		return nil, err
	}
	return &UpdateTagOutput{Body: TagRenameResponse{
		Message: fmt.Sprintf("tag %q renamed to %q", res.Was, res.Tag.Name),
		Was:     res.Was,
		Now:     dto.NewTag(res.Tag),
	}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*DeleteTagOutput, error) {
	t, err := s.services.Tag.DeleteTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteTagOutput{Body: TagDeleteResponse{
		Message: fmt.Sprintf("tag %q deleted", t.Name),
		Tag:     dto.NewTag(t),
	}}, nil
}
