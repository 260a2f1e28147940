package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Lint Errors (L001-L099)
	// ============================================

	"L001": {
		Category: CategoryLint,
		Message:  "Empty commit message",
		Detail:   "The commit message contains no content. Every commit needs at least a header line.",
		DocURL:   "https://bymeisam.github.io/use/errors/L001",
	},
	"L002": {
		Category: CategoryLint,
		Message:  "Malformed commit header",
		Detail:   "The header must follow the Conventional Commits form: type(scope): subject. The scope is optional and a '!' before the colon marks a breaking change.",
		DocURL:   "https://bymeisam.github.io/use/errors/L002",
	},
	"L003": {
		Category: CategoryLint,
		Message:  "Unknown commit type",
		Detail:   "The commit type is not in the allowed set. The default set is feat, fix, docs, style, refactor, perf, test, build, ci, chore, and revert.",
		DocURL:   "https://bymeisam.github.io/use/errors/L003",
	},
	"L004": {
		Category: CategoryLint,
		Message:  "Missing commit scope",
		Detail:   "This project requires a scope on every commit, e.g. feat(storage): rather than feat:.",
		DocURL:   "https://bymeisam.github.io/use/errors/L004",
	},
	"L005": {
		Category: CategoryLint,
		Message:  "Commit header too long",
		Detail:   "The header line exceeds the configured maximum length.",
		DocURL:   "https://bymeisam.github.io/use/errors/L005",
	},
	"L006": {
		Category: CategoryLint,
		Message:  "Empty commit subject",
		Detail:   "The text after the colon is empty. Describe what the commit does.",
		DocURL:   "https://bymeisam.github.io/use/errors/L006",
	},
	"L007": {
		Category: CategoryLint,
		Message:  "Commit subject starts with an uppercase letter",
		Detail:   "Conventional Commits subjects start lowercase: 'fix(geo): handle timeout', not 'fix(geo): Handle timeout'.",
		DocURL:   "https://bymeisam.github.io/use/errors/L007",
	},
	"L008": {
		Category: CategoryLint,
		Message:  "Commit subject ends with a period",
		Detail:   "The subject is a title, not a sentence; drop the trailing period.",
		DocURL:   "https://bymeisam.github.io/use/errors/L008",
	},
	"L009": {
		Category: CategoryLint,
		Message:  "Missing blank line before commit body",
		Detail:   "The body must be separated from the header by exactly one blank line.",
		DocURL:   "https://bymeisam.github.io/use/errors/L009",
	},
	"L010": {
		Category: CategoryLint,
		Message:  "Unknown commit scope",
		Detail:   "The scope is not in the allowed set configured for this project.",
		DocURL:   "https://bymeisam.github.io/use/errors/L010",
	},

	// ============================================
	// Publish Errors (P001-P099)
	// ============================================

	"P001": {
		Category: CategoryPublish,
		Message:  "go.mod not found",
		Detail:   "Publishing requires a go.mod at the module root.",
		DocURL:   "https://bymeisam.github.io/use/errors/P001",
	},
	"P002": {
		Category: CategoryPublish,
		Message:  "Invalid module path",
		Detail:   "The module path in go.mod is not a valid Go module path.",
		DocURL:   "https://bymeisam.github.io/use/errors/P002",
	},
	"P003": {
		Category: CategoryPublish,
		Message:  "Invalid semantic version",
		Detail:   "Published versions must be valid semantic versions of the form vMAJOR.MINOR.PATCH.",
		DocURL:   "https://bymeisam.github.io/use/errors/P003",
	},
	"P004": {
		Category: CategoryPublish,
		Message:  "Version already published",
		Detail:   "This version already exists in the registry. Published versions are immutable.",
		DocURL:   "https://bymeisam.github.io/use/errors/P004",
	},
	"P005": {
		Category: CategoryPublish,
		Message:  "Registry unreachable",
		Detail:   "The module registry did not respond. Check the bucket, region, and credentials in use.json.",
		DocURL:   "https://bymeisam.github.io/use/errors/P005",
	},
	"P006": {
		Category: CategoryPublish,
		Message:  "Module archive failed",
		Detail:   "The module directory could not be packed into a zip archive.",
		DocURL:   "https://bymeisam.github.io/use/errors/P006",
	},
	"P007": {
		Category: CategoryPublish,
		Message:  "Version does not match module path",
		Detail:   "For major versions 2 and above, the module path must end in /vN and the version must share that major number.",
		DocURL:   "https://bymeisam.github.io/use/errors/P007",
	},
	"P008": {
		Category: CategoryPublish,
		Message:  "Registry credentials missing",
		Detail:   "No credentials were found in the environment, so every registry call would be rejected.",
		DocURL:   "https://bymeisam.github.io/use/errors/P008",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No use.json was found in this directory or any parent.",
		DocURL:   "https://bymeisam.github.io/use/errors/C001",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Configuration file invalid",
		Detail:   "use.json could not be read or parsed.",
		DocURL:   "https://bymeisam.github.io/use/errors/C002",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A field in use.json has a value outside its allowed range.",
		DocURL:   "https://bymeisam.github.io/use/errors/C003",
	},
}

// Register adds or replaces an error template at runtime. Intended for
// embedding tools that extend the CLI with their own codes.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	template, ok := registry[code]
	return template, ok
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
