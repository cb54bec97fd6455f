// Package log defines standard attribute keys for tabular preprocessing operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in tabprep. Using these standard keys enables better
// log analysis, monitoring, and debugging of data preparation pipelines.
//
// The attributes are organized into categories:
//   - Transformer and Operation Context
//   - Frame Shape and Characteristics
//   - Performance Metrics
//
// These keys follow a hierarchical naming convention (e.g., "transformer.name",
// "data.rows") to enable structured log analysis and filtering.

package log

// Transformer and Operation Context
// These attributes identify the transformer type and operation being performed.
const (
	// TransformerNameKey identifies the type of preprocessing transformer.
	// Examples: "CategoricalGrouper", "ColumnProjector", "ColumnSelector"
	TransformerNameKey = "transformer.name"

	// OperationKey specifies the preprocessing operation being performed.
	// Standard values: "fit", "transform", "fit_transform"
	OperationKey = "tab.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "preprocessing", "frame"
	ComponentKey = "tab.component"
)

// Frame Shape and Characteristics
// These attributes describe the structure and properties of frames being processed.
const (
	// RowsKey indicates the number of rows in the frame.
	RowsKey = "data.rows"

	// ColumnsKey indicates the number of columns in the frame.
	ColumnsKey = "data.columns"

	// SelectedColumnsKey lists the column names a transformer acts on.
	SelectedColumnsKey = "data.selected_columns"

	// ColumnKindKey specifies the logical kind of a column.
	// Examples: "categorical", "numeric", "boolean", "other"
	ColumnKindKey = "data.column_kind"

	// SparseCountKey indicates how many category values were classified sparse.
	SparseCountKey = "grouper.sparse_count"
)

// Performance Metrics
// These attributes capture timing information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
