package reporting

import "context"

// LineSource loads report lines matching a filter.
type LineSource interface {
	Lines(ctx context.Context, f Filter) ([]Line, error)
}
