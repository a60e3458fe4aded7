package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamiljuma2/assignhub-backend/internal/http/handlers/common"
	"github.com/jamiljuma2/assignhub-backend/internal/service"
)

// FileHandler управляет загрузкой вложений.
type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload обрабатывает POST /files. Тип и размер файла проверяет
// хранилище по содержимому.
func (h *FileHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if fileHeader.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	defer src.Close()

	stored, err := h.files.Upload(c.Request.Context(), userID, fileHeader.Filename, src)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}
