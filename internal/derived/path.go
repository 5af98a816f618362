package derived

import (
	"strings"

	"homecare-data/internal/domain"
)

// ResolvePath walks a dotted camelCase path ("caregiver.phone") through
// nested records. Any missing segment, unknown field or absent intermediate
// record yields (nil, false); it never panics.
func ResolvePath(root domain.Fielder, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var cur any = root
	for _, seg := range strings.Split(path, ".") {
		f, ok := cur.(domain.Fielder)
		if !ok || f == nil {
			return nil, false
		}
		v, ok := f.Field(seg)
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// truthy: non-empty strings/dates, true, non-zero numbers, non-empty slices
// and any other non-nil value.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case domain.Date:
		return !x.IsZero()
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []string:
		return len(x) > 0
	}
	return true
}
