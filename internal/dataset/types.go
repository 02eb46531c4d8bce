package dataset

import "context"

// Example is one labeled data point: the inputs fed to a prompt template
// and the outputs holding the gold-standard reference. Immutable once
// loaded.
type Example struct {
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

// Reference returns the gold-standard target text, or "" when absent.
func (e Example) Reference() string {
	return e.Outputs["reference"]
}

// Question derives the source artifact text by probing the inputs for the
// known keys in priority order, falling back to a sentinel.
func (e Example) Question() string {
	for _, key := range []string{"question", "bug_report", "pr_title"} {
		if v, ok := e.Inputs[key]; ok {
			return v
		}
	}
	return "N/A"
}

// Info describes a dataset held by the remote store.
type Info struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExampleCount int    `json:"example_count"`
}

// Store is the remote dataset collaborator surface.
type Store interface {
	ListDatasets(ctx context.Context, name string) ([]Info, error)
	CreateDataset(ctx context.Context, name string) (*Info, error)
	CreateExample(ctx context.Context, datasetID string, ex Example) error
	ListExamples(ctx context.Context, datasetName string) ([]Example, error)
}
