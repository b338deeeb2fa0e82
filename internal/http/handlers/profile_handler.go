package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
)

// ProfileHandler serves addresses and contractor profiles.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type addAddressRequest struct {
	Line1     string `json:"line1" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

func (h *ProfileHandler) AddAddress(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req addAddressRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address, err := h.profiles.AddAddress(c.Request.Context(), userID, service.AddAddressInput{
		Line1:     req.Line1,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

func (h *ProfileHandler) ListAddresses(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	addresses, err := h.profiles.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses, "total": len(addresses)})
}

type updateProfileRequest struct {
	Bio               *string  `json:"bio"`
	Skills            []string `json:"skills"`
	Specialties       []string `json:"specialties"`
	HourlyRate        *float64 `json:"hourly_rate"`
	LicenseNumber     *string  `json:"license_number"`
	InsuranceVerified *bool    `json:"insurance_verified"`
}

func (h *ProfileHandler) UpdateContractorProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req updateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.UpdateContractorProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		Bio:               req.Bio,
		Skills:            req.Skills,
		Specialties:       req.Specialties,
		HourlyRate:        req.HourlyRate,
		LicenseNumber:     req.LicenseNumber,
		InsuranceVerified: req.InsuranceVerified,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetContractorProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.GetContractorProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
