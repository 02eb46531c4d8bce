package hub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/norvik-labs/promptctl/internal/dataset"
)

// The registry doubles as the dataset store; Client implements
// dataset.Store.
var _ dataset.Store = (*Client)(nil)

type wireDataset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExampleCount int    `json:"example_count"`
}

type wireExample struct {
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

// ListDatasets returns datasets matching the given name.
func (c *Client) ListDatasets(ctx context.Context, name string) ([]dataset.Info, error) {
	if c == nil {
		return nil, errors.New("hub: nil client")
	}

	path := "/datasets"
	if v := strings.TrimSpace(name); v != "" {
		path += "?name=" + url.QueryEscape(v)
	}

	var wire struct {
		Datasets []wireDataset `json:"datasets"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, fmt.Errorf("hub: list datasets: %w", err)
	}

	out := make([]dataset.Info, 0, len(wire.Datasets))
	for _, d := range wire.Datasets {
		out = append(out, dataset.Info{ID: d.ID, Name: d.Name, ExampleCount: d.ExampleCount})
	}
	return out, nil
}

// CreateDataset creates an empty dataset and returns its handle.
func (c *Client) CreateDataset(ctx context.Context, name string) (*dataset.Info, error) {
	if c == nil {
		return nil, errors.New("hub: nil client")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("hub: empty dataset name")
	}

	var wire wireDataset
	in := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/datasets", in, &wire); err != nil {
		return nil, fmt.Errorf("hub: create dataset %q: %w", name, err)
	}
	return &dataset.Info{ID: wire.ID, Name: wire.Name, ExampleCount: wire.ExampleCount}, nil
}

// CreateExample appends one example to a dataset.
func (c *Client) CreateExample(ctx context.Context, datasetID string, ex dataset.Example) error {
	if c == nil {
		return errors.New("hub: nil client")
	}
	datasetID = strings.TrimSpace(datasetID)
	if datasetID == "" {
		return errors.New("hub: empty dataset id")
	}

	in := wireExample{Inputs: ex.Inputs, Outputs: ex.Outputs}
	path := "/datasets/" + url.PathEscape(datasetID) + "/examples"
	if err := c.doJSON(ctx, http.MethodPost, path, in, nil); err != nil {
		return fmt.Errorf("hub: create example in %q: %w", datasetID, err)
	}
	return nil
}

// ListExamples returns a dataset's examples in the store's native order.
func (c *Client) ListExamples(ctx context.Context, datasetName string) ([]dataset.Example, error) {
	if c == nil {
		return nil, errors.New("hub: nil client")
	}
	datasetName = strings.TrimSpace(datasetName)
	if datasetName == "" {
		return nil, errors.New("hub: empty dataset name")
	}

	var wire struct {
		Examples []wireExample `json:"examples"`
	}
	path := "/datasets/" + url.PathEscape(datasetName) + "/examples"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, fmt.Errorf("hub: list examples in %q: %w", datasetName, err)
	}

	out := make([]dataset.Example, 0, len(wire.Examples))
	for _, e := range wire.Examples {
		out = append(out, dataset.Example{Inputs: e.Inputs, Outputs: e.Outputs})
	}
	return out, nil
}
