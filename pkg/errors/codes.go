package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal     ErrorCode = "COMMON_001"
	ErrCodeBadRequest   ErrorCode = "COMMON_002"
	ErrCodeNotFound     ErrorCode = "COMMON_005"
	ErrCodeConflict     ErrorCode = "COMMON_006"
	ErrCodeCancelled    ErrorCode = "COMMON_009"
	ErrCodeValidation   ErrorCode = "COMMON_010"
	ErrCodeStorageError ErrorCode = "COMMON_012"

	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Aliases kept short for call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
)

// Free-energy table error codes
const (
	ErrCodeTableParseFailed       ErrorCode = "TABLE_001"
	ErrCodeTableAxisInvalid       ErrorCode = "TABLE_002"
	ErrCodeTableSourceNotFound    ErrorCode = "TABLE_003"
	ErrCodeTableSchemeUnsupported ErrorCode = "TABLE_004"
)

// System / data model error codes
const (
	ErrCodeSubstanceInvalid   ErrorCode = "SYS_001"
	ErrCodeSubstanceDuplicate ErrorCode = "SYS_002"
	ErrCodeManifestInvalid    ErrorCode = "SYS_003"
)

// Classification error codes
const (
	ErrCodeGridSpecInvalid ErrorCode = "GRID_001"
)

// Rendering error codes
const (
	ErrCodePlotKindUnknown    ErrorCode = "PLOT_001"
	ErrCodePlotKindConflict   ErrorCode = "PLOT_002"
	ErrCodePlotOptionsInvalid ErrorCode = "PLOT_003"
	ErrCodePlotWriteFailed    ErrorCode = "PLOT_004"
)

// Configuration error codes
const (
	ErrCodeConfigInvalid ErrorCode = "CFG_001"
)

// exitCodes maps error codes to CLI process exit statuses.  Codes not listed
// exit with 1.
var exitCodes = map[ErrorCode]int{
	ErrCodeBadRequest:             2,
	ErrCodeValidation:             2,
	ErrCodeConfigInvalid:          2,
	ErrCodeGridSpecInvalid:        2,
	ErrCodePlotKindUnknown:        2,
	ErrCodePlotOptionsInvalid:     2,
	ErrCodeTableSourceNotFound:    3,
	ErrCodeTableSchemeUnsupported: 3,
	ErrCodeTableParseFailed:       3,
	ErrCodeTableAxisInvalid:       3,
	ErrCodeCancelled:              130,
}

// ExitCode returns the process exit status for err.  A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return 1
}

//Personal.AI order the ending
