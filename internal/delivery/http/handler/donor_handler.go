package handler

import (
	"net/http"

	"bloodlink/internal/middleware"
	"bloodlink/internal/usecase/account"
	"bloodlink/internal/usecase/request"
	"bloodlink/internal/usecase/search"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DonorHandler struct {
	accounts *account.Service
	search   *search.Service
	requests *request.Service
}

func NewDonorHandler(accounts *account.Service, search *search.Service, requests *request.Service) *DonorHandler {
	return &DonorHandler{accounts: accounts, search: search, requests: requests}
}

func (h *DonorHandler) RegisterRoutes(router *gin.RouterGroup) {
	donors := router.Group("/donors")
	{
		donors.GET("/search", h.Search)
		donors.GET("/compatible/:bloodType", h.Compatible)

		donorOnly := donors.Group("")
		donorOnly.Use(middleware.DonorOnly())
		{
			donorOnly.GET("/my-donations", h.MyDonations)
			donorOnly.GET("/relevant-requests", h.RelevantRequests)
			donorOnly.PUT("/availability", h.UpdateAvailability)
			donorOnly.PUT("/donation", h.RecordDonation)
		}

		donors.GET("/:id", h.GetDonor)
	}
}

func (h *DonorHandler) Search(c *gin.Context) {
	var q search.DonorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	donors, err := h.search.SearchDonors(c.Request.Context(), &q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Donors retrieved successfully", len(donors), donors)
}

func (h *DonorHandler) Compatible(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Compatible blood types retrieved", h.search.CompatibleTypes(c.Param("bloodType")))
}

func (h *DonorHandler) GetDonor(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid donor ID")
	if !ok {
		return
	}

	donor, err := h.search.GetDonor(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Donor retrieved successfully", donor)
}

func (h *DonorHandler) MyDonations(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	stats, err := h.accounts.DonationStats(c.Request.Context(), current.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Donation stats retrieved successfully", stats)
}

func (h *DonorHandler) RelevantRequests(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	reqs, err := h.requests.RelevantForDonor(c.Request.Context(), current)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, http.StatusOK, "Relevant requests retrieved successfully", len(reqs), reqs)
}

func (h *DonorHandler) UpdateAvailability(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req account.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.accounts.UpdateAvailability(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability updated successfully", resp)
}

func (h *DonorHandler) RecordDonation(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req account.RecordDonationRequest
	// An empty body records a donation made now.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	profile, err := h.accounts.RecordDonation(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Donation recorded successfully", profile)
}
