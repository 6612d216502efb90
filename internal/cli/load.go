package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/storage"
	"github.com/syntrixbase/showroom/pkg/model"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	SkipExisting bool
}

// SeedFile is the YAML layout accepted by load.
//
//	vehicles:
//	  - name: Civic
//	    year: "2019"
//	    price: 89900
//	    images:
//	      - {name: front, uid: img-1, url: https://cdn.example/civic.jpg}
type SeedFile struct {
	Vehicles []map[string]interface{} `yaml:"vehicles"`
}

// LoadResult summarizes a load run.
type LoadResult struct {
	Collection string   `json:"collection"`
	Created    []string `json:"created"`
	Skipped    []string `json:"skipped"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <file.yml>",
		Short: "Write vehicles from a YAML file into the catalog collection",
		Long: `Write vehicles from a YAML file into the catalog collection.

Names are stored upper-cased, the form prefix search matches against.
The document id is taken from "id" and generated otherwise. "uid" is the
owner's id and is stored as given.
Vehicles later in the file are created later, so they list first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "skip vehicles whose id already exists")

	return cmd
}

// ReadSeedFile parses a seed file.
func ReadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

func runLoad(ctx context.Context, opts *LoadOptions, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := ReadSeedFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read seed file", err)
	}

	var result LoadResult
	err = withStore(ctx, opts.RootOptions, func(store storage.DocumentStore, cfg *config.Config) error {
		result.Collection = cfg.Catalog.Collection
		base := time.Now().UnixMilli()
		for i, v := range f.Vehicles {
			doc := seedDoc(cfg.Catalog.Collection, v, base+int64(i))
			id := doc.DocID()
			if err := store.Create(ctx, doc); err != nil {
				if errors.Is(err, model.ErrExists) && opts.SkipExisting {
					result.Skipped = append(result.Skipped, id)
					continue
				}
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to create vehicle %s", id), err)
			}
			result.Created = append(result.Created, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeOutput(out, opts.Format, result, func(w io.Writer) {
		fmt.Fprintf(w, "Loaded %d vehicles into %s", len(result.Created), result.Collection)
		if len(result.Skipped) > 0 {
			fmt.Fprintf(w, " (%d skipped)", len(result.Skipped))
		}
		fmt.Fprintln(w)
	})
}

func seedDoc(collection string, v map[string]interface{}, created int64) storage.StoredDoc {
	data := make(map[string]interface{}, len(v))
	for k, val := range v {
		data[k] = val
	}

	id, _ := data["id"].(string)
	delete(data, "id")
	if id == "" {
		id = uuid.NewString()
	}
	if name, ok := data["name"].(string); ok {
		data["name"] = catalog.NormalizePrefix(name)
	}

	doc := storage.NewStoredDoc(collection, id, data)
	doc.CreatedAt = created
	doc.UpdatedAt = created
	return doc
}
