package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/services"
)

// ExportReasonHeader 导出结果的原因文案，响应体是日历文件本身
const ExportReasonHeader = "X-Export-Reason"

type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// Export GET /calendar/export?format=ICS&from=YYYY-MM-DD&to=YYYY-MM-DD&include_group_tasks=true
func (h *CalendarHandler) Export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	includeGroups := false
	if raw := c.Query("include_group_tasks"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "Invalid include_group_tasks")
			return
		}
		includeGroups = v
	}

	result, err := h.calendarService.Export(c.Request.Context(), services.ExportRequest{
		UserID:            userID,
		Format:            c.DefaultQuery("format", services.FormatICS),
		From:              c.Query("from"),
		To:                c.Query("to"),
		IncludeGroupTasks: includeGroups,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.Header(ExportReasonHeader, result.Reason)
	c.Header("Content-Disposition", `attachment; filename="studyconnect.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", result.Document.Bytes())
}
