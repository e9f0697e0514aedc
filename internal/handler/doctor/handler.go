package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/handler"
	"github.com/medagenda/clinic-api/internal/middleware"
	"github.com/medagenda/clinic-api/internal/model"
	doctorService "github.com/medagenda/clinic-api/internal/service/doctor"
)

type Handler struct {
	service doctorService.DoctorServicer
}

func NewHandler(service doctorService.DoctorServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PATCH("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	clinicID, _ := middleware.ClinicID(c)

	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctor := &model.Doctor{
		ClinicID:                clinicID,
		Name:                    req.Name,
		Speciality:              req.Speciality,
		AvatarImageURL:          req.AvatarImageURL,
		AvailableFromWeekDay:    req.AvailableFromWeekDay,
		AvailableToWeekDay:      req.AvailableToWeekDay,
		AvailableFromTime:       req.AvailableFromTime,
		AvailableToTime:         req.AvailableToTime,
		AppointmentPriceInCents: req.AppointmentPriceInCents,
	}

	if err := h.service.CreateDoctor(c.Request.Context(), doctor); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	clinicID, _ := middleware.ClinicID(c)

	doctors, err := h.service.ListDoctors(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	clinicID, _ := middleware.ClinicID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	clinicID, _ := middleware.ClinicID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	applyDoctorUpdate(doctor, &req)

	if err := h.service.UpdateDoctor(c.Request.Context(), doctor); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	clinicID, _ := middleware.ClinicID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func applyDoctorUpdate(doctor *model.Doctor, req *model.UpdateDoctorRequest) {
	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Speciality != nil {
		doctor.Speciality = *req.Speciality
	}
	if req.AvatarImageURL != nil {
		doctor.AvatarImageURL = req.AvatarImageURL
	}
	if req.AvailableFromWeekDay != nil {
		doctor.AvailableFromWeekDay = *req.AvailableFromWeekDay
	}
	if req.AvailableToWeekDay != nil {
		doctor.AvailableToWeekDay = *req.AvailableToWeekDay
	}
	if req.AvailableFromTime != nil {
		doctor.AvailableFromTime = *req.AvailableFromTime
	}
	if req.AvailableToTime != nil {
		doctor.AvailableToTime = *req.AvailableToTime
	}
	if req.AppointmentPriceInCents != nil {
		doctor.AppointmentPriceInCents = *req.AppointmentPriceInCents
	}
}
