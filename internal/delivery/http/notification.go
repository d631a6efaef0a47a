package http

import (
	"errors"
	"net/http"
	"strconv"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupNotifications(base *echo.Group) {
	v1 := base.Group("/v1/notifications")
	{
		v1.GET("", h.ListNotifications)
		v1.GET("/count", h.CountNotifications)
		v1.GET("/settings", h.GetNotificationSettings)
		v1.PUT("/settings", h.UpdateNotificationSettings)
		v1.PUT("/read-all", h.MarkAllNotificationsRead)
		v1.POST("/test", h.SendTestNotification)
		v1.GET("/:id", h.GetNotification)
		v1.PUT("/:id/read", h.MarkNotificationRead)
		v1.DELETE("/:id", h.DeleteNotification)
	}
}

func (h *HttpAPIHandler) ListNotifications(c echo.Context) error {
	var req dto.ListNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	notifications, err := h.service.NotificationService.List(c.Request().Context(), &model.GetNotificationParam{
		UserID:     req.UserID,
		UnreadOnly: req.UnreadOnly,
		Limit:      req.Limit,
		Offset:     req.Skip,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notifications", dto.ToNotificationResponses(notifications)))
}

func (h *HttpAPIHandler) CountNotifications(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only"))

	count, err := h.service.NotificationService.Count(c.Request().Context(), &model.GetNotificationParam{
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification count", dto.NotificationCountResponse{Count: count}))
}

func (h *HttpAPIHandler) GetNotification(c echo.Context) error {
	userID, id, err := pathNotificationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	notification, err := h.service.NotificationService.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return notificationError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification", dto.ToNotificationResponse(notification)))
}

func (h *HttpAPIHandler) MarkNotificationRead(c echo.Context) error {
	userID, id, err := pathNotificationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	notification, err := h.service.NotificationService.MarkRead(c.Request().Context(), userID, id)
	if err != nil {
		return notificationError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification marked read", dto.ToNotificationResponse(notification)))
}

func (h *HttpAPIHandler) MarkAllNotificationsRead(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	updated, err := h.service.NotificationService.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notifications marked read", map[string]int64{"updated": updated}))
}

func (h *HttpAPIHandler) DeleteNotification(c echo.Context) error {
	userID, id, err := pathNotificationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if err := h.service.NotificationService.Delete(c.Request().Context(), userID, id); err != nil {
		return notificationError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification deleted", nil))
}

func (h *HttpAPIHandler) GetNotificationSettings(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	settings, err := h.service.NotificationService.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return notificationError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification settings", dto.NotificationSettingsResponse{
		NotificationEnabled:  settings.NotificationEnabled,
		NotificationChannels: settings.Channels(),
	}))
}

func (h *HttpAPIHandler) UpdateNotificationSettings(c echo.Context) error {
	var req dto.UpdateNotificationSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	settings, err := h.service.NotificationService.UpdateSettings(c.Request().Context(), &req)
	if err != nil {
		return notificationError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification settings updated", dto.NotificationSettingsResponse{
		NotificationEnabled:  settings.NotificationEnabled,
		NotificationChannels: settings.Channels(),
	}))
}

func (h *HttpAPIHandler) SendTestNotification(c echo.Context) error {
	var req dto.TestNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	notification, err := h.service.NotificationService.SendTest(c.Request().Context(), req.UserID, req.Title, req.Content)
	if err != nil {
		return notificationError(c, err)
	}
	if notification == nil {
		return c.JSON(http.StatusOK, dto.NewSuccessResponse("Notifications are disabled for this user", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Test notification sent", dto.ToNotificationResponse(notification)))
}

func queryUserID(c echo.Context) (uint, error) {
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 32)
	if err != nil || userID == 0 {
		return 0, errors.New("user_id is required")
	}
	return uint(userID), nil
}

func pathNotificationID(c echo.Context) (userID, id uint, err error) {
	userID, err = queryUserID(c)
	if err != nil {
		return 0, 0, err
	}
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || rawID == 0 {
		return 0, 0, errors.New("invalid notification id")
	}
	return userID, uint(rawID), nil
}

func notificationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("Notification not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, dto.NewBaseResponse(http.StatusForbidden, "Notification belongs to another user", nil))
	default:
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
}
