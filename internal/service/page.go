package service

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NormalizePage приводит limit/offset к допустимым границам.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
