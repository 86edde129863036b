package handlers

import (
	"errors"
	"errorwatch/config"
	"errorwatch/models"
	"errorwatch/service"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// IngestError stores one error payload posted by a reporter
func IngestError(c *gin.Context) {
	if c.ContentType() != "application/json" {
		ingestRejected.WithLabelValues("content_type").Inc()
		errV2(c, http.StatusUnsupportedMediaType, CodeInvalidRequest, "Content type must be application/json", c.ContentType())
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.Settings.MaxIngestBodyBytes)

	var p models.ErrorPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ingestRejected.WithLabelValues("too_large").Inc()
			errV2(c, http.StatusRequestEntityTooLarge, CodeTooLarge, "Payload too large", err.Error())
			return
		}
		ingestRejected.WithLabelValues("invalid").Inc()
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid error payload", err.Error())
		return
	}

	row, err := service.GlobalServices.Errors.Save(p, c.ClientIP())
	if err != nil {
		ingestRejected.WithLabelValues("storage").Inc()
		log.Printf("Failed to store error from %s: %v", c.ClientIP(), err)
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to store error", err.Error())
		return
	}

	ingested.Inc()
	if config.Settings.LogLevel == "DEBUG" {
		log.Printf("Ingested error %s from %s: %s (%s:%d)", row.ID, row.RemoteAddr, row.Message, row.Path, row.Line)
	}
	okV2(c, gin.H{"id": row.ID})
}

// ListErrors returns stored errors, newest first
func ListErrors(c *gin.Context) {
	q := service.ErrorQuery{
		Page:     1,
		PageSize: config.Settings.DefaultPageSize,
		Keyword:  strings.TrimSpace(c.Query("q")),
		Path:     strings.TrimSpace(c.Query("path")),
	}

	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid page", pageStr)
			return
		}
		q.Page = p
	}
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		s, err := strconv.Atoi(sizeStr)
		if err != nil || s <= 0 || s > 500 {
			errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid page_size", sizeStr)
			return
		}
		q.PageSize = s
	}

	rows, total, err := service.GlobalServices.Errors.List(q)
	if err != nil {
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to list errors", err.Error())
		return
	}

	data := make([]models.StoredErrorRead, 0, len(rows))
	for i := range rows {
		data = append(data, rows[i].Read())
	}
	okV2(c, ErrorPage{Data: data, Page: q.Page, PageSize: q.PageSize, Total: total})
}

// ErrorPage is one page of stored errors
type ErrorPage struct {
	Data     []models.StoredErrorRead `json:"data"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Total    int64                    `json:"total"`
}

// GetError returns a single stored error
func GetError(c *gin.Context) {
	row, err := service.GlobalServices.Errors.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			errV2(c, http.StatusNotFound, CodeNotFound, "Error not found", c.Param("id"))
			return
		}
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to load error", err.Error())
		return
	}
	okV2(c, row.Read())
}

// ClearErrors deletes every stored error
func ClearErrors(c *gin.Context) {
	n, err := service.GlobalServices.Errors.Clear()
	if err != nil {
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to clear errors", err.Error())
		return
	}
	log.Printf("Cleared %d stored errors", n)
	okV2(c, gin.H{"deleted": n})
}
