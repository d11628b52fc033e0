package instrumentation

// Cardinality management for metric labels.
//
// Tool names and protocol methods arrive from the client. Recording them
// verbatim would let a misbehaving host create unbounded label sets, so
// values outside the known set are collapsed to LabelUnknown.

// LabelUnknown replaces label values outside the known set.
const LabelUnknown = "unknown"

// KnownMethods lists the MCP methods recorded under their own label.
var KnownMethods = []string{
	"initialize",
	"notifications/initialized",
	"ping",
	"tools/list",
	"tools/call",
}

// BoundedLabel returns value if it is one of known, LabelUnknown otherwise.
//
// Example:
//
//	BoundedLabel("create_event", []string{"create_event"})  // "create_event"
//	BoundedLabel("rm_rf", []string{"create_event"})         // "unknown"
//	BoundedLabel("", nil)                                   // "unknown"
func BoundedLabel(value string, known []string) string {
	for _, k := range known {
		if value == k {
			return value
		}
	}
	return LabelUnknown
}

// MethodLabel bounds an MCP method name to KnownMethods.
func MethodLabel(method string) string {
	return BoundedLabel(method, KnownMethods)
}

// Common operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationCreate = "create"
)
