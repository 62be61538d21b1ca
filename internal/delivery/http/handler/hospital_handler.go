package handler

import (
	"net/http"

	"bloodlink/internal/middleware"
	"bloodlink/internal/usecase/hospital"
	"bloodlink/internal/usecase/request"
	"bloodlink/internal/usecase/search"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitals *hospital.Service
	search    *search.Service
	requests  *request.Service
}

func NewHospitalHandler(hospitals *hospital.Service, search *search.Service, requests *request.Service) *HospitalHandler {
	return &HospitalHandler{hospitals: hospitals, search: search, requests: requests}
}

func (h *HospitalHandler) RegisterRoutes(router *gin.RouterGroup) {
	hospitals := router.Group("/hospitals")
	hospitals.Use(middleware.HospitalOnly())
	{
		hospitals.GET("/dashboard", h.Dashboard)
		hospitals.POST("/bulk-search", h.BulkSearch)
		hospitals.GET("/my-requests", h.MyRequests)
		hospitals.POST("/bulk-request", h.BulkRequest)
		hospitals.GET("/blood-stats", h.BloodStats)
	}
}

func (h *HospitalHandler) Dashboard(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	dashboard, err := h.hospitals.Dashboard(c.Request.Context(), current)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *HospitalHandler) BulkSearch(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req search.BulkSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	donors, err := h.search.BulkSearch(c.Request.Context(), current, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Donors retrieved successfully", len(donors), donors)
}

func (h *HospitalHandler) MyRequests(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	reqs, err := h.hospitals.MyRequests(c.Request.Context(), current, c.Query("status"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Hospital requests retrieved successfully", len(reqs), reqs)
}

func (h *HospitalHandler) BulkRequest(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req request.BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.requests.CreateBulk(c.Request.Context(), current, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusCreated, "Blood requests created successfully", len(created), created)
}

func (h *HospitalHandler) BloodStats(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var q hospital.BloodStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	stats, err := h.hospitals.BloodStats(c.Request.Context(), current, &q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Blood stats retrieved successfully", stats)
}
