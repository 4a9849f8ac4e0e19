package document

import (
	"net/http"
	"strings"
)

func valueUUIDs(r *http.Request) []string {
	val := r.URL.Query().Get("uuids")

	if val == "" {
		return nil
	}

	var result []string

	for _, id := range strings.Split(val, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result = append(result, id)
		}
	}

	return result
}
