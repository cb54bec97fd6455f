package preprocessing

// GrouperOption is a function that configures CategoricalGrouper
type GrouperOption func(*CategoricalGrouper)

// WithMethod sets the grouping method (currently only "freq" is supported)
func WithMethod(method string) GrouperOption {
	return func(g *CategoricalGrouper) {
		g.method = method
	}
}

// WithPercentileThresh sets the percentile threshold for the "freq" method
func WithPercentileThresh(thresh float64) GrouperOption {
	return func(g *CategoricalGrouper) {
		g.percentileThresh = thresh
	}
}

// WithNewCategory sets the sentinel category imputed over sparse observations
func WithNewCategory(newCat string) GrouperOption {
	return func(g *CategoricalGrouper) {
		g.newCategory = newCat
	}
}

// WithIncludeColumns specifies column names that should be treated like
// categorical features regardless of their declared kind
func WithIncludeColumns(cols []string) GrouperOption {
	return func(g *CategoricalGrouper) {
		g.includeCols = cols
	}
}

// WithExcludeColumns specifies categorical column names that should not be
// grouped
func WithExcludeColumns(cols []string) GrouperOption {
	return func(g *CategoricalGrouper) {
		g.excludeCols = cols
	}
}
