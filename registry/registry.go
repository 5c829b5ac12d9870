// Package registry holds the static description of every intake field:
// flags, help text, enumerated options, and the order fields are asked in.
// It is a pure lookup table with no behavior.
package registry

// FieldDefinition describes one field of the intake record.
type FieldDefinition struct {
	Key         string
	DisplayName string
	Icon        string
	Description string
	Required    bool
	Skippable   bool
	MultiValued bool
	Options     []string
	// Suggesting marks name-bearing fields eligible for the suggestion loop.
	Suggesting bool
	// Keywords are matched against submission-error text to route a failure
	// back to this field.
	Keywords []string
}

// Field keys.
const (
	KeyTitle         = "title"
	KeyType          = "type"
	KeyClient        = "client"
	KeyModule        = "module"
	KeyDescription   = "description"
	KeyOwner         = "owner"
	KeyPriority      = "priority"
	KeyDueDate       = "due_date"
	KeyReferenceLink = "reference_link"
	KeyCreatedBy     = "created_by"
)

// TypeOptions is the closed enumeration for the type field.
var TypeOptions = []string{"Feature", "Bug", "Improvement"}

// PriorityOptions are the canonical priority values in conversation order.
var PriorityOptions = []string{"0 - Critical", "1 - High", "2 - Medium", "3 - Low"}

var fields = map[string]FieldDefinition{
	KeyTitle: {
		Key:         KeyTitle,
		DisplayName: "Request Title",
		Icon:        "📝",
		Description: "A short, specific name for the request (3-100 characters).",
		Required:    true,
		Keywords:    []string{"title", "request title", "name"},
	},
	KeyType: {
		Key:         KeyType,
		DisplayName: "Request Type",
		Icon:        "🏷️",
		Description: "One of: Feature, Bug, Improvement.",
		Required:    true,
		Options:     TypeOptions,
		Keywords:    []string{"type", "request type", "select"},
	},
	KeyClient: {
		Key:         KeyClient,
		DisplayName: "Requesting Client",
		Icon:        "🏢",
		Description: "The client or team asking for this. Say 'skip' if unknown.",
		Skippable:   true,
		MultiValued: true,
		Keywords:    []string{"client", "requesting client", "customer"},
	},
	KeyModule: {
		Key:         KeyModule,
		DisplayName: "Module",
		Icon:        "🧩",
		Description: "The product area this touches. Say 'skip' if unknown.",
		Skippable:   true,
		MultiValued: true,
		Keywords:    []string{"module", "component", "area"},
	},
	KeyDescription: {
		Key:         KeyDescription,
		DisplayName: "Request Description",
		Icon:        "📄",
		Description: "What should happen and why (at least 15 characters).",
		Required:    true,
		Keywords:    []string{"description", "request description", "rich_text"},
	},
	KeyOwner: {
		Key:         KeyOwner,
		DisplayName: "Request Owner",
		Icon:        "👤",
		Description: "Who will own this request.",
		Required:    true,
		MultiValued: true,
		Suggesting:  true,
		Keywords:    []string{"owner", "request owner", "people", "assignee"},
	},
	KeyPriority: {
		Key:         KeyPriority,
		DisplayName: "Priority",
		Icon:        "🚦",
		Description: "Critical, High, Medium or Low (or 0-3).",
		Required:    true,
		Options:     PriorityOptions,
		Keywords:    []string{"priority", "severity"},
	},
	KeyDueDate: {
		Key:         KeyDueDate,
		DisplayName: "Due Date",
		Icon:        "📅",
		Description: "When this is needed, e.g. 'next friday' or 2025-10-01.",
		Required:    true,
		Keywords:    []string{"due date", "due_date", "date"},
	},
	KeyReferenceLink: {
		Key:         KeyReferenceLink,
		DisplayName: "Reference Link",
		Icon:        "🔗",
		Description: "An http(s) link with more context. Say 'skip' for none.",
		Skippable:   true,
		MultiValued: true,
		Keywords:    []string{"reference link", "reference_link", "url", "link"},
	},
	KeyCreatedBy: {
		Key:         KeyCreatedBy,
		DisplayName: "Created By",
		Icon:        "🖊️",
		Description: "Your name, for the record.",
		Required:    true,
		Suggesting:  true,
		Keywords:    []string{"created by", "created_by", "creator", "reporter"},
	},
}

// AskOrder is the sequence the wizard walks through when advancing
// automatically. It differs from any grouping used for display.
var AskOrder = []string{
	KeyTitle,
	KeyType,
	KeyClient,
	KeyModule,
	KeyDescription,
	KeyOwner,
	KeyPriority,
	KeyDueDate,
	KeyReferenceLink,
	KeyCreatedBy,
}

// ReviewOrder lists required fields first for the review screen.
var ReviewOrder = []string{
	KeyTitle,
	KeyType,
	KeyDescription,
	KeyOwner,
	KeyPriority,
	KeyDueDate,
	KeyCreatedBy,
	KeyClient,
	KeyModule,
	KeyReferenceLink,
}

// Lookup returns the definition for key.
func Lookup(key string) (FieldDefinition, bool) {
	def, ok := fields[key]
	return def, ok
}

// MustLookup returns the definition for a key known to exist.
func MustLookup(key string) FieldDefinition {
	def, ok := fields[key]
	if !ok {
		panic("registry: unknown field key " + key)
	}
	return def
}

// Keys returns all field keys in ask order.
func Keys() []string {
	out := make([]string, len(AskOrder))
	copy(out, AskOrder)
	return out
}

// NextAfter returns the field that follows key in ask order, or "" when key
// is the last one.
func NextAfter(key string) string {
	for i, k := range AskOrder {
		if k == key && i+1 < len(AskOrder) {
			return AskOrder[i+1]
		}
	}
	return ""
}

// Resolve maps loose user input (key, display name, or a unique prefix) to a
// field key. Used by the `edit <field>` command.
func Resolve(input string) (string, bool) {
	if _, ok := fields[input]; ok {
		return input, true
	}
	norm := normalize(input)
	for key, def := range fields {
		if normalize(def.DisplayName) == norm || normalize(key) == norm {
			return key, true
		}
	}
	// Unique prefix match on keys.
	match := ""
	for key := range fields {
		if len(norm) >= 3 && len(key) >= len(norm) && key[:len(norm)] == norm {
			if match != "" {
				return "", false
			}
			match = key
		}
	}
	return match, match != ""
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c == ' ' || c == '-':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
