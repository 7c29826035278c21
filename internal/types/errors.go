package types

import "errors"

// Sentinel errors for vizcore operations.
var (
	// ErrMalformedCondition indicates a rule value has the wrong shape for its
	// operator (e.g. a scalar where between expects [min, max]).
	ErrMalformedCondition = errors.New("malformed condition value")

	// ErrMissingColor indicates a rule has no color block.
	ErrMissingColor = errors.New("rule has no color block")

	// ErrMissingTarget indicates a row rule has no target column.
	ErrMissingTarget = errors.New("row rule has no target")

	// ErrUnknownRange indicates a rule range other than cell or row.
	ErrUnknownRange = errors.New("unknown rule range")

	// ErrInvalidRuleID indicates a rule ID that is not a UUID.
	ErrInvalidRuleID = errors.New("invalid rule id")

	// ErrTooManyRules indicates a rule list exceeds MaxRulesPerList.
	ErrTooManyRules = errors.New("too many rules")

	// ErrTooManyRows indicates a dataset exceeds MaxDatasetRows.
	ErrTooManyRows = errors.New("dataset exceeds maximum rows")

	// ErrUnsupportedFormat indicates a dataset or rule file of unknown type.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrColumnNotFound indicates a referenced column is not in the dataset.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidChartConfig indicates a chart configuration that is not valid
	// JSON or lacks a required data section.
	ErrInvalidChartConfig = errors.New("invalid chart config")

	// ErrUnknownChart indicates a chart kind no builder handles.
	ErrUnknownChart = errors.New("unknown chart kind")

	// ErrContainerNotFound indicates a workbench container that does not exist.
	ErrContainerNotFound = errors.New("container not found")

	// ErrDispatcherDisposed indicates use of a workbench dispatcher after Dispose.
	ErrDispatcherDisposed = errors.New("dispatcher disposed")

	// ErrWriteQuery indicates a data source query that is not read-only.
	ErrWriteQuery = errors.New("only read-only queries are allowed")

	// ErrPredicatePanic indicates a predicate panicked and was recovered.
	ErrPredicatePanic = errors.New("predicate panicked")
)
