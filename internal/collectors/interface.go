package collectors

// Collector is the common contract for all signal collectors. Collectors
// never fail the pipeline: an unconfigured or failing collector returns a
// degraded signal set carrying an error marker instead.
type Collector interface {
	Name() string
	IsConfigured() bool
}
