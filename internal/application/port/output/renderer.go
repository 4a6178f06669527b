package output

import "context"

// PageRenderer loads a URL in a real browser and returns the rendered HTML.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
	Close()
}
