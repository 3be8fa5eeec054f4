package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Set on readonly view",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Delete on readonly view",
	},
	"R003": {
		Category: CategoryRuntime,
		Message:  "Invalid key for target",
	},
	"R004": {
		Category: CategoryRuntime,
		Message:  "Value cannot be made reactive",
	},

	// ============================================
	// Scheduler (R020-R039)
	// ============================================

	"R020": {
		Category: CategoryScheduler,
		Message:  "Flush budget exceeded",
		Detail:   "Remaining jobs were deferred to the next loop turn.",
	},
	"R021": {
		Category: CategoryScheduler,
		Message:  "Task queue full",
		Detail:   "The posted task was discarded.",
	},
	"R022": {
		Category: CategoryScheduler,
		Message:  "Effect panicked",
		Detail:   "The panic was recovered and the rest of the flush continued.",
	},

	// ============================================
	// Config (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"R041": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
	},

	// ============================================
	// Scenario (R060-R079)
	// ============================================

	"R060": {
		Category: CategoryScenario,
		Message:  "Malformed scenario",
	},
	"R061": {
		Category: CategoryScenario,
		Message:  "Invalid expression",
	},
	"R062": {
		Category: CategoryScenario,
		Message:  "Unknown view",
	},
	"R063": {
		Category: CategoryScenario,
		Message:  "Expectation failed",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
