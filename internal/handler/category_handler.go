package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List handles GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	var filter dto.CategoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	categories, total, err := h.categoryService.ListCategories(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]*dto.CategoryResponse, len(categories))
	for i, cat := range categories {
		resp[i] = dto.NewCategoryResponse(cat)
	}
	filter.SetDefaults()
	response.Paginated(c, resp, total, filter.Limit, filter.Offset)
}

// Get handles GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewCategoryResponse(category))
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), principal(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewCategoryResponse(category))
}

// Update handles PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewCategoryResponse(category))
}

// Delete handles DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Category deleted"})
}
