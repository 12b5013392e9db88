package ports

import "context"

// ImportResult counts what one review import run did.
type ImportResult struct {
	Locations int `json:"locations"`
	Fetched   int `json:"fetched"`
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type ReviewImporter interface {
	Run(ctx context.Context) (ImportResult, error)
}
