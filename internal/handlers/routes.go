package handlers

import (
	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers and auth middleware mounted under /api/v1
type Routes struct {
	Auth     gin.HandlerFunc
	Accounts *AuthHandler
	// LocalAccounts enables email/password register and login
	LocalAccounts bool
	Rooms         *RoomHandler
	Bookings      *BookingHandler
	Complaints    *ComplaintHandler
	Audit         *AuditHandler
}

// Register mounts the API on router
func (r Routes) Register(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public
	v1.GET("/rooms", r.Rooms.ListRooms)
	v1.GET("/rooms/:id", r.Rooms.GetRoom)
	v1.GET("/room-types", r.Rooms.ListRoomTypes)
	if r.LocalAccounts {
		auth := v1.Group("/auth")
		auth.POST("/register", r.Accounts.Register)
		auth.POST("/login", r.Accounts.Login)
	}

	protected := v1.Group("")
	protected.Use(r.Auth)
	{
		protected.GET("/me", r.Accounts.Me)

		staff := protected.Group("")
		staff.Use(middleware.RequireStaff())
		staff.POST("/rooms", r.Rooms.CreateRoom)
		staff.PATCH("/rooms/:id/status", r.Rooms.UpdateRoomStatus)
		staff.DELETE("/rooms/:id", r.Rooms.DeleteRoom)
		staff.PATCH("/bookings/:id/status", r.Bookings.UpdateBookingStatus)
		staff.PATCH("/complaints/:id/status", r.Complaints.UpdateComplaintStatus)
		staff.GET("/audit/:entity_type/:entity_id", r.Audit.GetHistory)

		protected.POST("/bookings", r.Bookings.CreateBooking)
		protected.GET("/bookings", r.Bookings.ListBookings)
		protected.GET("/bookings/:id", r.Bookings.GetBooking)
		protected.POST("/bookings/:id/cancel", r.Bookings.CancelBooking)
		protected.POST("/bookings/:id/pay", r.Bookings.RecordPayment)
		protected.GET("/bookings/:id/complaint-eligibility", r.Bookings.ComplaintEligibility)

		protected.POST("/complaints", r.Complaints.SubmitComplaint)
		protected.GET("/complaints", r.Complaints.ListComplaints)
	}
}
