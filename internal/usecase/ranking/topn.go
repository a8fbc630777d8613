package ranking

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Defaults for the number of returned candidates.
const (
	DefaultTopN    = 5
	DefaultMaxTopN = 100
)

// NormalizeTopN turns a caller-supplied top-N value of any shape into a
// usable count. Positive integers (or integral floats and numeric strings)
// are kept and clamped to maxN; anything else yields def.
func NormalizeTopN(v any, def, maxN int) int {
	if def <= 0 {
		def = DefaultTopN
	}
	if maxN <= 0 {
		maxN = DefaultMaxTopN
	}

	n, ok := toInt(v)
	if !ok || n <= 0 {
		return min(def, maxN)
	}
	return min(n, maxN)
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case float64:
		return floatToInt(x)
	case float32:
		return floatToInt(float64(x))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), true
		}
		return 0, false
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		return i, err == nil
	case *int:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
