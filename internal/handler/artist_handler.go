package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// ArtistHandler handles artist-related HTTP requests
type ArtistHandler struct {
	artistService service.ArtistService
}

// NewArtistHandler creates a new ArtistHandler
func NewArtistHandler(artistService service.ArtistService) *ArtistHandler {
	return &ArtistHandler{artistService: artistService}
}

// List handles GET /artists
func (h *ArtistHandler) List(c *gin.Context) {
	var filter dto.ArtistListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	artists, total, err := h.artistService.ListArtists(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]*dto.ArtistResponse, len(artists))
	for i, a := range artists {
		resp[i] = dto.NewArtistResponse(a)
	}
	filter.SetDefaults()
	response.Paginated(c, resp, total, filter.Limit, filter.Offset)
}

// Get handles GET /artists/:id
func (h *ArtistHandler) Get(c *gin.Context) {
	artist, err := h.artistService.GetArtist(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewArtistResponse(artist))
}

// Create handles POST /artists
func (h *ArtistHandler) Create(c *gin.Context) {
	var req dto.CreateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	artist, err := h.artistService.CreateArtist(c.Request.Context(), principal(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewArtistResponse(artist))
}

// Update handles PUT /artists/:id
func (h *ArtistHandler) Update(c *gin.Context) {
	var req dto.UpdateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	artist, err := h.artistService.UpdateArtist(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewArtistResponse(artist))
}

// Delete handles DELETE /artists/:id
func (h *ArtistHandler) Delete(c *gin.Context) {
	if err := h.artistService.DeleteArtist(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Artist deleted"})
}
