package shared

import (
	"net/http"
	"strconv"
)

// Page is an offset window over a listing. Out-of-range query values fall
// back to the defaults instead of failing the request.
type Page struct {
	Limit  int
	Offset int
}

func ParsePage(r *http.Request, defaultLimit, maxLimit int) Page {
	q := r.URL.Query()
	page := Page{
		Limit:  queryInt(q.Get("limit"), defaultLimit, 1),
		Offset: queryInt(q.Get("offset"), 0, 0),
	}
	if maxLimit > 0 {
		page.Limit = min(page.Limit, maxLimit)
	}
	return page
}

// WriteHeaders reports the window and the unpaged total to the client.
// A negative total means it could not be counted and is left out.
func (p Page) WriteHeaders(w http.ResponseWriter, total int) {
	h := w.Header()
	h.Set("X-Limit", strconv.Itoa(p.Limit))
	h.Set("X-Offset", strconv.Itoa(p.Offset))
	if total >= 0 {
		h.Set("X-Total-Count", strconv.Itoa(total))
	}
}

func queryInt(raw string, fallback, floor int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < floor {
		return fallback
	}
	return v
}
