package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/directory"
	"rollcall/internal/metrics"
)

// Handler orchestrates the directory and ledger behind the HTTP surface.
// Each endpoint is a single call into a service plus status mapping.
type Handler struct {
	users  *directory.Service
	ledger *attendance.Service

	signingKey string
	issuer     string
	sessionTTL time.Duration
}

// New creates a handler. The JWT settings are needed here because login
// issues the session token.
func New(users *directory.Service, ledger *attendance.Service, signingKey, issuer string, sessionTTL time.Duration) *Handler {
	return &Handler{
		users:      users,
		ledger:     ledger,
		signingKey: signingKey,
		issuer:     issuer,
		sessionTTL: sessionTTL,
	}
}

// RegisterRoutes mounts the API under /api with the auth gates applied.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", auth.RequireAuth(h.signingKey, h.issuer))
	authed.POST("/change-password", h.ChangePassword)
	authed.POST("/attendance", h.TimeIn)
	authed.GET("/my-attendance-status", h.Status)
	authed.GET("/my-attendance", h.History)

	admin := authed.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/pending", h.Pending)
	admin.POST("/approve/:id", h.Approve)
	admin.GET("/users", h.Users)
	admin.POST("/reset-password/:id", h.ResetPassword)
}

type registerRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Department string `json:"department"`
	Quarter    string `json:"quarter"`
}

// Register files a pending user awaiting admin approval.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	_, err := h.users.Register(c.Request.Context(), req.Username, req.Password, directory.Profile{
		Department: req.Department,
		Quarter:    req.Quarter,
	})
	if errors.Is(err, directory.ErrConflict) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}
	if err != nil {
		internalError(c, "register", err)
		return
	}

	metrics.RegistrationsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Registration submitted. Await admin approval."})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token carrying the
// user's id, username and role.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, directory.ErrNotApproved):
		metrics.LoginsTotal.WithLabelValues("unapproved").Inc()
		c.JSON(http.StatusForbidden, gin.H{"message": "Account not approved yet"})
		return
	case errors.Is(err, directory.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid login"})
		return
	case err != nil:
		internalError(c, "login", err)
		return
	}

	token, _, err := auth.Issue(auth.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}, h.issuer, h.signingKey, h.sessionTTL)
	if err != nil {
		internalError(c, "token issue", err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"token": token, "role": u.Role})
}

// Pending lists users awaiting approval. Password hashes never serialize.
func (h *Handler) Pending(c *gin.Context) {
	users, err := h.users.Pending(c.Request.Context())
	if err != nil {
		internalError(c, "list pending", err)
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Approve moves a pending user into the approved collection.
func (h *Handler) Approve(c *gin.Context) {
	_, err := h.users.Approve(c.Request.Context(), c.Param("id"))
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "pending user not found"})
		return
	}
	if err != nil {
		internalError(c, "approve", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User approved successfully"})
}

// Users lists approved users.
func (h *Handler) Users(c *gin.Context) {
	users, err := h.users.ApprovedUsers(c.Request.Context())
	if err != nil {
		internalError(c, "list users", err)
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	c.JSON(http.StatusOK, users)
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword force-sets a user's password without the old one.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "newPassword is required"})
		return
	}

	err := h.users.ResetPassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		internalError(c, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword lets the caller rotate their own password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "currentPassword and newPassword are required"})
		return
	}

	id, _ := auth.IdentityFrom(c)
	err := h.users.ChangePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, directory.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Current password incorrect"})
		return
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	case err != nil:
		internalError(c, "change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// TimeIn records today's attendance. A repeat on the same day is a 200
// with an informational message, never an error.
func (h *Handler) TimeIn(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	// The ledger row is built from the directory record, not the token
	// claims, so stale profile data in an old token never enters it.
	u, err := h.users.FindApprovedByID(c.Request.Context(), id.UserID)
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		internalError(c, "time in", err)
		return
	}

	_, recorded, err := h.ledger.TimeIn(c.Request.Context(), u)
	if err != nil {
		internalError(c, "time in", err)
		return
	}
	if !recorded {
		metrics.TimeInsTotal.WithLabelValues("duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Already timed in today"})
		return
	}
	metrics.TimeInsTotal.WithLabelValues("recorded").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Time In recorded successfully"})
}

// Status reports whether the caller already timed in today.
func (h *Handler) Status(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	already, err := h.ledger.StatusFor(c.Request.Context(), id.UserID)
	if err != nil {
		internalError(c, "status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alreadyTimedIn": already})
}

// History returns the caller's attendance records in insertion order.
func (h *Handler) History(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	records, err := h.ledger.HistoryFor(c.Request.Context(), id.UserID)
	if err != nil {
		internalError(c, "history", err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// internalError logs the cause and returns an opaque 500.
func internalError(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}
