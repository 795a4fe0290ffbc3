package controller

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

// pageFromQuery reads page, page_size, order_by and order.
func pageFromQuery(q url.Values) (model.Page, error) {
	page, err := intParam(q, "page")
	if err != nil {
		return model.Page{}, err
	}
	size, err := intParam(q, "page_size")
	if err != nil {
		return model.Page{}, err
	}

	p := model.PageFromNumber(page, size)
	if orderBy := strings.TrimSpace(q.Get("order_by")); orderBy != "" {
		p.OrderBy = orderBy
		p.Desc = false
	}
	switch strings.ToLower(q.Get("order")) {
	case "":
	case "asc":
		p.Desc = false
	case "desc":
		p.Desc = true
	default:
		return model.Page{}, appErrors.Validation("order", "Invalid order direction, expected asc or desc")
	}
	return p, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Validation(key, "Invalid "+key)
	}
	return n, nil
}

func idParam(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Validation(field, "Invalid "+field)
	}
	return id, nil
}

// int64ListParam parses a comma separated id list such as post_id=1,2,3.
func int64ListParam(q url.Values, key string) ([]int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := idParam(strings.TrimSpace(part), key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func dateParam(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(service.DateLayout, raw)
	if err != nil {
		return nil, appErrors.Validation(key, "Invalid date format for "+key+", expected YYYY-MM-DD")
	}
	return &t, nil
}

func boolParam(q url.Values, key string) bool {
	b, _ := strconv.ParseBool(q.Get(key))
	return b
}
