package errors

// Error codes for the ysr interpreter
// These codes are used in diagnostics and in the language server
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Evaluation errors (references, functions)
// E0100-E0199: Lexical and line-structure errors
// E0300-E0399: Include/file errors
// E0900-E0999: Resource errors (fatal)
// W0001-W0099: Warnings

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0003: Malformed $(...) syntax
	ErrorMalformedReference = "E0003"

	// E0004: Nested references beyond the configured depth
	ErrorExpansionDepth = "E0004"

	// E0100: Unexpected byte where a specific byte was required
	ErrorUnexpectedCharacter = "E0100"

	// E0101: Lexical error reported by the scanner
	ErrorLexical = "E0101"

	// E0103: Line matches no directive, assignment or rule
	ErrorUnrecognizedLine = "E0103"

	// E0104: Missing space after a directive keyword
	ErrorExpectedSpace = "E0104"

	// E0105: Recipe line that does not follow a rule
	ErrorRecipeWithoutRule = "E0105"

	// E0300: Required include file not found
	ErrorIncludeNotFound = "E0300"

	// E0301: Include file could not be read
	ErrorIncludeRead = "E0301"

	// E0302: Include nesting exceeds the configured depth
	ErrorIncludeDepth = "E0302"

	// E0900: Module arena exhausted
	ErrorArenaExhausted = "E0900"

	// W0001: Module declared more than once
	WarningDuplicateModule = "W0001"

	// W0002: Directive recognised but not evaluated
	WarningDirectiveNotEvaluated = "W0002"

	// W0003: Shell assignment stored without running the command
	WarningShellAssignment = "W0003"

	// W0004: Function name not recognised in a $(name args) reference
	WarningUnknownFunction = "W0004"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndefinedVariable:
		return "Variable is referenced but not defined in the session"
	case ErrorMalformedReference:
		return "Variable or function reference is not well formed"
	case ErrorExpansionDepth:
		return "References are nested deeper than the expansion limit"
	case ErrorUnexpectedCharacter:
		return "Unexpected character"
	case ErrorLexical:
		return "Malformed line ending or escape"
	case ErrorUnrecognizedLine:
		return "Line is not a directive, assignment or rule"
	case ErrorExpectedSpace:
		return "Directive keyword must be followed by a space"
	case ErrorRecipeWithoutRule:
		return "Recipe line appears before any rule"
	case ErrorIncludeNotFound:
		return "Included file does not exist"
	case ErrorIncludeRead:
		return "Included file could not be read"
	case ErrorIncludeDepth:
		return "Includes are nested too deeply"
	case ErrorArenaExhausted:
		return "Module name storage is exhausted"
	case WarningDuplicateModule:
		return "Module was already declared"
	case WarningDirectiveNotEvaluated:
		return "Directive is recognised but its body is not evaluated"
	case WarningShellAssignment:
		return "Shell assignment value is stored without running the command"
	case WarningUnknownFunction:
		return "Function call form uses a name that is not recognised"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return code != "" && code[0] == 'W'
}

// IsFatal returns true if the error code ends the session
func IsFatal(code string) bool {
	return code >= "E0900" && code < "E1000"
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code == "":
		return "Unknown"
	case code[0] == 'W':
		return "Warning"
	case code >= "E0001" && code < "E0100":
		return "Evaluation"
	case code >= "E0100" && code < "E0200":
		return "Lexical"
	case code >= "E0300" && code < "E0400":
		return "Include"
	case code >= "E0900" && code < "E1000":
		return "Resource"
	default:
		return "Unknown"
	}
}
