package script

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// FormatValue renders a value for a trace line. Views are rendered from
// their raw target, so formatting never records dependencies.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "Infinity"
		case math.IsInf(x, -1):
			return "-Infinity"
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case reactive.View:
		return FormatValue(x.Raw())
	case *reactive.Object:
		parts := make([]string, 0, x.Len())
		for _, k := range x.Keys() {
			value, _ := x.Get(k)
			parts = append(parts, k+": "+FormatValue(value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *reactive.Array:
		return formatList(x.Items())
	case []any:
		return formatList(x)
	case map[string]any:
		ks := make([]string, 0, len(x))
		for k := range x {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		parts := make([]string, 0, len(ks))
		for _, k := range ks {
			parts = append(parts, k+": "+FormatValue(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

func formatList(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = FormatValue(item)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
