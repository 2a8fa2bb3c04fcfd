package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-dispatch/module/core/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

type locationService interface {
	RecordSample(ctx context.Context, sample *domain.PositionSample) (bool, error)
	GetLatest(ctx context.Context, vehicleID string) (*domain.PositionSample, error)
	GetPath(ctx context.Context, vehicleID string, window time.Duration) ([]domain.PathPoint, []domain.StopSegment, error)
	GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error)
	OutsideVehicles(ctx context.Context) ([]domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID string) error
}

type telemetryService interface {
	FetchLiveAll(ctx context.Context) ([]domain.TelemetryRecord, error)
	RegisterFromEndpoint(ctx context.Context, serviceType, assignedRegion, telemetryURL, phoneNumber string) (int, error)
}

type dispatchService interface {
	Dispatch(ctx context.Context, serviceType string, userLat, userLon float64, callerPhone string) (*domain.DispatchResult, error)
}

type VehicleHandler struct {
	locationSvc  locationService
	telemetrySvc telemetryService
	dispatchSvc  dispatchService
}

func NewVehicleHandler(locationSvc locationService, telemetrySvc telemetryService, dispatchSvc dispatchService) *VehicleHandler {
	return &VehicleHandler{
		locationSvc:  locationSvc,
		telemetrySvc: telemetrySvc,
		dispatchSvc:  dispatchSvc,
	}
}

func (h *VehicleHandler) Register(r *gin.RouterGroup) {
	r.GET("/vehicles", h.GetAllVehicles)
	r.POST("/vehicles", h.RegisterVehicles)
	r.DELETE("/vehicles/:vehicle_id", h.DeleteVehicle)
	r.GET("/vehicles/outside", h.GetOutsideVehicles)
	r.GET("/vehicles/:vehicle_id/location", h.GetLatestLocation)
	r.GET("/vehicles/:vehicle_id/path", h.GetPath)
	r.POST("/gps_data", h.RecordSample)
	r.GET("/live_locations", h.GetLiveLocations)
	r.GET("/emergency_service/:service_type", h.EmergencyService)
}

func (h *VehicleHandler) GetAllVehicles(c *gin.Context) {
	vehicles, err := h.locationSvc.GetAllVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

type registerRequest struct {
	Type           string `json:"type" binding:"required"`
	AssignedRegion string `json:"assigned_region" binding:"required"`
	TelemetryURL   string `json:"api_url" binding:"required"`
	PhoneNumber    string `json:"phone_number"`
}

// RegisterVehicles probes the given telemetry endpoint and registers every
// vehicle its payload describes.
func (h *VehicleHandler) RegisterVehicles(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registered, err := h.telemetrySvc.RegisterFromEndpoint(c.Request.Context(), req.Type, req.AssignedRegion, req.TelemetryURL, req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnrecognizedSchema):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrExternalCall):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register vehicles"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"registered": registered})
}

func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	err := h.locationSvc.DeleteVehicle(c.Request.Context(), c.Param("vehicle_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VehicleHandler) GetOutsideVehicles(c *gin.Context) {
	vehicles, err := h.locationSvc.OutsideVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate compliance"})
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	c.JSON(http.StatusOK, vehicles)
}

type locationResponse struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

func (h *VehicleHandler) GetLatestLocation(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	sample, err := h.locationSvc.GetLatest(c.Request.Context(), vehicleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		VehicleID: sample.VehicleID,
		Latitude:  sample.Location.Lat,
		Longitude: sample.Location.Lon,
		Timestamp: sample.Location.Timestamp.Unix(),
	})
}

type pathPointResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

type stopResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
}

func (h *VehicleHandler) GetPath(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	window := 24 * time.Hour
	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours parameter"})
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	path, stops, err := h.locationSvc.GetPath(c.Request.Context(), vehicleID, window)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch path"})
		return
	}

	pathOut := make([]pathPointResponse, len(path))
	for i, p := range path {
		pathOut[i] = pathPointResponse{
			Latitude:  p.Lat,
			Longitude: p.Lon,
			Timestamp: p.Timestamp.UTC().Format(timestampLayout),
		}
	}
	stopsOut := make([]stopResponse, len(stops))
	for i, s := range stops {
		stopsOut[i] = stopResponse{
			Latitude:  s.Lat,
			Longitude: s.Lon,
			StartTime: s.StartTime.UTC().Format(timestampLayout),
			EndTime:   s.EndTime.UTC().Format(timestampLayout),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"path_data": pathOut,
		"stops":     stopsOut,
	})
}

// RecordSample stores one position report and runs the excursion check.
func (h *VehicleHandler) RecordSample(c *gin.Context) {
	vehicleID := c.PostForm("vehicle_id")

	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude"})
		return
	}
	lon, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude"})
		return
	}

	var ts time.Time
	if raw := c.PostForm("timestamp"); raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || unix <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp"})
			return
		}
		ts = time.Unix(unix, 0).UTC()
	}

	flagged, err := h.locationSvc.RecordSample(c.Request.Context(), &domain.PositionSample{
		VehicleID: vehicleID,
		Location:  domain.Location{Lat: lat, Lon: lon, Timestamp: ts},
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record sample"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "saved",
		"out_of_region": flagged,
	})
}

func (h *VehicleHandler) GetLiveLocations(c *gin.Context) {
	records, err := h.telemetrySvc.FetchLiveAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch live locations"})
		return
	}
	if records == nil {
		records = []domain.TelemetryRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *VehicleHandler) EmergencyService(c *gin.Context) {
	serviceType := c.Param("service_type")

	userLat, err := strconv.ParseFloat(c.Query("user_latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_latitude"})
		return
	}
	userLon, err := strconv.ParseFloat(c.Query("user_longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_longitude"})
		return
	}
	callerPhone := c.Query("phone_number")

	result, err := h.dispatchSvc.Dispatch(c.Request.Context(), serviceType, userLat, userLon, callerPhone)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrExternalCall):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
