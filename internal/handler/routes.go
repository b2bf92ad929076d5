package handler

import "github.com/gin-gonic/gin"

// Routes groups the API handlers mounted under the API prefix.
type Routes struct {
	Classes    *ClassHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Tuitions   *TuitionHandler
	Calendar   *CalendarHandler
	Dashboard  *DashboardHandler
}

// Register mounts every API route on group. auth runs before each handler.
func (r Routes) Register(group *gin.RouterGroup, auth gin.HandlerFunc) {
	if auth != nil {
		group.Use(auth)
	}

	classes := group.Group("/classes")
	classes.GET("", r.Classes.List)
	classes.POST("", r.Classes.Create)
	classes.GET("/schedule-days", r.Classes.ScheduleDays)
	classes.POST("/schedule/format", r.Classes.FormatSchedule)
	classes.GET("/:id", r.Classes.Get)
	classes.PUT("/:id", r.Classes.Update)
	classes.DELETE("/:id", r.Classes.Delete)

	students := group.Group("/students")
	students.GET("", r.Students.List)
	students.POST("", r.Students.Create)
	students.GET("/:id", r.Students.Get)
	students.PUT("/:id", r.Students.Update)
	students.DELETE("/:id", r.Students.Delete)

	attendance := group.Group("/attendance")
	attendance.GET("", r.Attendance.List)
	attendance.GET("/count", r.Attendance.Count)
	attendance.POST("/batch", r.Attendance.Record)

	tuitions := group.Group("/tuitions")
	tuitions.GET("", r.Tuitions.List)
	tuitions.POST("", r.Tuitions.Create)
	tuitions.GET("/overdue", r.Tuitions.Overdue)
	tuitions.GET("/overdue/export", r.Tuitions.ExportOverdue)
	tuitions.POST("/:id/pay", r.Tuitions.MarkPaid)

	calendar := group.Group("/calendar")
	calendar.GET("/week", r.Calendar.Week)
	calendar.GET("/week/export", r.Calendar.Export)

	dashboard := group.Group("/dashboard")
	dashboard.GET("/today", r.Dashboard.Today)
	dashboard.GET("/management", r.Dashboard.Management)
}
