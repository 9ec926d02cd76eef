package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://orbit.vango.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Scope Errors (E001, E003-E004, E010-E019)
	// ============================================

	"E001": {
		Category: CategoryScope,
		Message:  "Unknown scope name",
		Detail:   "An element declares a scope that was never registered with the runtime. The element is left inert.",
		DocURL:   docBase + "E001",
	},
	"E003": {
		Category: CategoryScope,
		Message:  "state() called more than once",
		Detail:   "A behavior may declare its state exactly once per mount. A second call is a behavior-authoring bug and aborts the scope.",
		DocURL:   docBase + "E003",
	},
	"E004": {
		Category: CategoryScope,
		Message:  "ref() called more than once",
		Detail:   "A behavior may declare its ref hooks exactly once per mount. A second call is a behavior-authoring bug and aborts the scope.",
		DocURL:   docBase + "E004",
	},
	"E010": {
		Category: CategoryScope,
		Message:  "Behavior failed to load",
		Detail:   "The deferred loader for this scope returned an error. No bindings were installed.",
		DocURL:   docBase + "E010",
	},
	"E011": {
		Category: CategoryScope,
		Message:  "Behavior panicked during mount",
		Detail:   "The behavior's mount function panicked. The scope was destroyed.",
		DocURL:   docBase + "E011",
	},

	// ============================================
	// Binding Errors (E002, E005-E009, E012)
	// ============================================

	"E002": {
		Category: CategoryBinding,
		Message:  "Structural directive requires a template element",
		Detail:   "Conditional, list and teleport directives clone the inert content of a <template> placeholder and cannot be placed on other elements.",
		DocURL:   docBase + "E002",
	},
	"E005": {
		Category: CategoryBinding,
		Message:  "Property assignment failed",
		Detail:   "The host element rejected a passthrough assignment. The binding stays subscribed and later updates are still attempted.",
		DocURL:   docBase + "E005",
	},
	"E006": {
		Category: CategoryBinding,
		Message:  "List directive received a non-sequence value",
		Detail:   "The value bound by a list directive must be an array. All rendered items were removed.",
		DocURL:   docBase + "E006",
	},
	"E007": {
		Category: CategoryBinding,
		Message:  "Template has no content",
		Detail:   "The template placeholder has no element content to clone.",
		DocURL:   docBase + "E007",
	},
	"E008": {
		Category: CategoryBinding,
		Message:  "Model directive on unsupported element",
		Detail:   "Two-way binding is only available on input, textarea and select elements.",
		DocURL:   docBase + "E008",
	},
	"E009": {
		Category: CategoryBinding,
		Message:  "Invalid event directive",
		Detail:   "An event directive must name an event type after its prefix.",
		DocURL:   docBase + "E009",
	},
	"E012": {
		Category: CategoryBinding,
		Message:  "Teleport target not found",
		Detail:   "No element matches the teleport target; the template content was not rendered.",
		DocURL:   docBase + "E012",
	},

	// ============================================
	// Compute Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryCompute,
		Message:  "Expression not allowed",
		Detail:   "Only expressions from the configured allow-list may be evaluated.",
		DocURL:   docBase + "E020",
	},
	"E021": {
		Category: CategoryCompute,
		Message:  "Expression evaluation failed",
		Detail:   "The expression could not be compiled or evaluated against the current state.",
		DocURL:   docBase + "E021",
	},
	"E022": {
		Category: CategoryCompute,
		Message:  "Unknown expression engine",
		Detail:   "Supported engines are \"expr\" and \"cel\".",
		DocURL:   docBase + "E022",
	},

	// ============================================
	// Hydration Errors (E030-E039)
	// ============================================

	"E030": {
		Category: CategoryHydration,
		Message:  "Malformed props payload",
		Detail:   "The props payload is not a JSON object. An empty props object is used instead.",
		DocURL:   docBase + "E030",
	},

	// ============================================
	// Config Errors (E040-E049)
	// ============================================

	"E040": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No orbit.json or orbit.yaml was found.",
		DocURL:   docBase + "E040",
	},
	"E041": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains an invalid value.",
		DocURL:   docBase + "E041",
	},
	"E042": {
		Category: CategoryConfig,
		Message:  "Configuration parse failed",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   docBase + "E042",
	},

	// ============================================
	// Runtime / CLI Errors (E050-E059)
	// ============================================

	"E050": {
		Category: CategoryScope,
		Message:  "Runtime already started",
		Detail:   "Start was called on a running runtime. Call Stop first.",
		DocURL:   docBase + "E050",
	},
	"E051": {
		Category: CategoryCLI,
		Message:  "Page could not be read",
		Detail:   "The HTML page given on the command line could not be opened or parsed.",
		DocURL:   docBase + "E051",
	},
	"E052": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		Detail:   "orbit init was asked for a template that does not exist.",
		DocURL:   docBase + "E052",
	},
	"E053": {
		Category: CategoryCLI,
		Message:  "File already exists",
		Detail:   "orbit init will not overwrite an existing file without --force.",
		DocURL:   docBase + "E053",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
