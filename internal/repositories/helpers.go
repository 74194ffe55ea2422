package repositories

import "strings"

func toLower(s string) string { return strings.ToLower(s) }

// normalizePage clamps page/pageSize to sane values with an endpoint-specific
// default page size.
func normalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
