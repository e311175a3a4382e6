package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dashmed/dashmed/internal/constants"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/service"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	*PageWriter
	dashboards *service.DashboardService
}

func NewDashboardHandler(pw *PageWriter, dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{PageWriter: pw, dashboards: dashboards}
}

// Accueil lists the doctor's patients.
func (h *DashboardHandler) Accueil(c *gin.Context) {
	sess := session.FromContext(c)
	patients, err := h.dashboards.PatientList(c.Request.Context(), sess.DoctorID())
	if err != nil {
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}
	h.Page(c, http.StatusOK, "accueil", "Mes patients", view.Data{
		Page: gin.H{"Patients": patients},
	})
}

// Dashboard shows one patient's measurements. Without an explicit patient
// id it falls back to the doctor's first followed patient. A patient the
// doctor does not follow renders as a 404, same as one that does not exist.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	sess := session.FromContext(c)

	patientID := queryUint(c, "patient")
	if patientID == 0 {
		if c.Query("patient") != "" {
			h.NotFound(c)
			return
		}
		patients, err := h.dashboards.PatientList(c.Request.Context(), sess.DoctorID())
		if err != nil {
			h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
			return
		}
		if len(patients) == 0 {
			h.Page(c, http.StatusOK, "dashboard", "Tableau de bord", view.Data{
				Page: gin.H{},
			})
			return
		}
		patientID = patients[0].ID
	}

	dash, err := h.dashboards.Dashboard(c.Request.Context(), sess.DoctorID(), patientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.NotFound(c)
			return
		}
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}

	h.Page(c, http.StatusOK, "dashboard", dash.Patient.FirstName+" "+dash.Patient.LastName, view.Data{
		Page: gin.H{
			"Patient":  dash.Patient,
			"Measures": dash.Measures,
		},
	})
}

// ChartData feeds the dashboard charts.
func (h *DashboardHandler) ChartData(c *gin.Context) {
	patientID := queryUint(c, "patient")
	measureID := queryUint(c, "measure")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	if patientID == 0 || measureID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètres invalides"})
		return
	}

	sess := session.FromContext(c)
	points, err := h.dashboards.ChartData(c.Request.Context(), sess.DoctorID(), patientID, measureID, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mesure introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
