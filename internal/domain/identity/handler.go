package identity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts routes that do not require a token.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/staff/doctors", h.RegisterDoctor)
	admin.POST("/staff/reception", h.RegisterReception)
	admin.PUT("/doctors/:id", h.UpdateDoctor)

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string  `json:"token"`
	Person *Person `json:"person"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, person, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if apperror.IsValidation(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Person: person})
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var in RegisterDoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctor, err := h.svc.RegisterDoctor(c.Request().Context(), in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, doctor)
}

func (h *Handler) RegisterReception(c echo.Context) error {
	var in RegisterReceptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	person, err := h.svc.RegisterReception(c.Request().Context(), in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, person)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	p := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, p.Limit, p.Offset))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var dp DoctorProfile
	if err := c.Bind(&dp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dp.PersonID = id
	doctor, err := h.svc.UpdateDoctorProfile(c.Request().Context(), dp)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, doctor)
}
