package dataset

import (
	"context"
	"fmt"
	"io"
)

// Sync ensures the named dataset exists in the remote store, uploading the
// local examples when it has to be created. An already-existing dataset is
// left untouched. Returns the dataset name so callers can evaluate against
// it regardless of outcome; remote failures are diagnostics, not fatal.
func Sync(ctx context.Context, store Store, name string, examples []Example, diag io.Writer) string {
	if diag == nil {
		diag = io.Discard
	}
	if store == nil || len(examples) == 0 {
		return name
	}

	existing, err := store.ListDatasets(ctx, name)
	if err != nil {
		fmt.Fprintf(diag, "dataset: list %q: %v\n", name, err)
		return name
	}
	for _, info := range existing {
		if info.Name == name {
			return name
		}
	}

	created, err := store.CreateDataset(ctx, name)
	if err != nil {
		fmt.Fprintf(diag, "dataset: create %q: %v\n", name, err)
		return name
	}

	for i, ex := range examples {
		if err := store.CreateExample(ctx, created.ID, ex); err != nil {
			fmt.Fprintf(diag, "dataset: upload example %d to %q: %v\n", i, name, err)
			return name
		}
	}

	return name
}
