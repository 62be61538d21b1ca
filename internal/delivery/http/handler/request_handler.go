package handler

import (
	"net/http"

	"bloodlink/internal/usecase/request"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	service *request.Service
}

func NewRequestHandler(service *request.Service) *RequestHandler {
	return &RequestHandler{service: service}
}

// RegisterRoutes mounts the blood request endpoints. All of them need an
// authenticated caller.
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/my-requests", h.MyRequests)
		requests.GET("/:id", h.Get)
		requests.PUT("/:id/status", h.UpdateStatus)
		requests.DELETE("/:id", h.Delete)
		requests.POST("/:id/responses", h.Respond)
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req request.CreateBloodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ContactNumber = utils.SanitizePhone(req.ContactNumber)

	resp, err := h.service.Create(c.Request.Context(), current, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Blood request created successfully", resp)
}

func (h *RequestHandler) List(c *gin.Context) {
	var q request.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	reqs, err := h.service.List(c.Request.Context(), &q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Blood requests retrieved successfully", len(reqs), reqs)
}

func (h *RequestHandler) MyRequests(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	reqs, err := h.service.ListMine(c.Request.Context(), current.ID, c.Query("status"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Your blood requests retrieved successfully", len(reqs), reqs)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid request ID")
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Blood request retrieved successfully", resp)
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid request ID")
	if !ok {
		return
	}

	var req request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), current.ID, id, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Request status updated successfully", resp)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid request ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), current.ID, id); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Blood request deleted successfully", nil)
}

func (h *RequestHandler) Respond(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid request ID")
	if !ok {
		return
	}

	var req request.RespondRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	resp, err := h.service.Respond(c.Request.Context(), current, id, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Response recorded successfully", resp)
}
