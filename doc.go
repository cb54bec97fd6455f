// Package tabprep provides pandas-style tabular preprocessing for Go,
// designed for feature pipelines that feed gonum-based models.
//
// tabprep offers a scikit-learn-like fit/transform API so that engineers
// familiar with Python's preprocessing ecosystem can build the same
// pipelines in Go.
//
// # Features
//
// - Frequency-based grouping of sparse categories into a single sentinel
// - Automatic projection of raw string columns to boolean/numeric/categorical
// - Column selection by name or by logical type
// - Closed category domains that mirror pandas' categorical dtype
// - Robust error handling with typed errors and stack traces
//
// # Installation
//
// Install tabprep using go get:
//
//	go get github.com/YuminosukeSato/tabprep
//
// # Quick Start
//
// Here's a simple example of grouping sparse categories:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "github.com/YuminosukeSato/tabprep/core/frame"
//	    "github.com/YuminosukeSato/tabprep/preprocessing"
//	)
//
//	func main() {
//	    col := frame.NewColumn("color", frame.Categorical,
//	        []string{"red", "red", "red", "blue", "blue", "green"})
//	    X, err := frame.New(col)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    grouper, err := preprocessing.NewCategoricalGrouper(
//	        preprocessing.WithPercentileThresh(0.2),
//	        preprocessing.WithNewCategory("Other"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := grouper.FitTransform(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("Transformed:", out)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - preprocessing: CategoricalGrouper, ColumnProjector, ColumnSelector, TypeSelector
//   - core/frame: The Frame and Column data structures
//   - core/model: Core transformer interfaces, base types and persistence
//   - pkg/errors: Typed errors, warnings and panic recovery
//   - pkg/log: Structured logging with stack trace extraction
//
// # Concurrency
//
// Transformers are not internally synchronized. Fit mutates the receiver
// and must be serialized by the caller; once fitted, Transform only reads
// the receiver and may be called from multiple goroutines concurrently.
//
// # Contributing
//
// Contributions are welcome! Please see our GitHub repository:
// https://github.com/YuminosukeSato/tabprep
//
// # License
//
// tabprep is released under the MIT License.
package tabprep
