package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/service"
)

var imageMsgs = messages{notFound: "Image not found"}

// ImagesHandler serves the pictures of an event.
type ImagesHandler struct {
	Images *service.ImageService
	Log    *logrus.Entry
}

func NewImagesHandler(images *service.ImageService, log *logrus.Entry) *ImagesHandler {
	return &ImagesHandler{Images: images, Log: log}
}

func (h *ImagesHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	images, err := h.Images.List(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusOK, images)
}

// Upload accepts one multipart file in the "image" field.
func (h *ImagesHandler) Upload(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Images.EnsureEvent(ctx, id); err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return bad(c, "No image file provided")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	defer f.Close()

	img, err := h.Images.Upload(ctx, id, fh.Filename, f)
	if err != nil {
		return fail(c, h.Log, err, eventMsgs)
	}
	return c.JSON(http.StatusCreated, img)
}

// Delete removes the image named by the imageId query parameter.
func (h *ImagesHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid event ID")
	}
	raw := strings.TrimSpace(c.QueryParam("imageId"))
	if raw == "" {
		return bad(c, "Image ID is required")
	}
	imageID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || imageID <= 0 {
		return bad(c, "Invalid image ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Images.Delete(ctx, id, imageID); err != nil {
		return fail(c, h.Log, err, imageMsgs)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully"})
}
