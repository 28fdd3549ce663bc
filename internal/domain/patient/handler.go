package patient

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := api.Group("", auth.RequireRole(auth.RoleReception))
	write.POST("/patients", h.Register)
	write.PUT("/patients/:id/contact", h.UpdateContact)

	api.GET("/patients", h.Search)
	api.GET("/patients/:id", h.Get)
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type contactRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) UpdateContact(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateContact(c.Request().Context(), id, req.Phone, req.Address)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Search(c echo.Context) error {
	p := pagination.FromContext(c)
	patients, total, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"), p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, p.Limit, p.Offset))
}
