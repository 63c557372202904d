package alerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

func ValidateStatus(s string) (models.AlertStatus, error) {
	status, ok := models.ParseAlertStatus(s)
	if !ok {
		return "", errors.New("status must be 'open', 'acknowledged', 'remediated', or 'ignored'")
	}
	return status, nil
}

func parsePagination(r *http.Request) (page, limit int, err error) {
	page = 1
	limit = defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, nil
}
