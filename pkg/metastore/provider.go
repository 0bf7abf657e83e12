package metastore

import "context"

type (
	// Provider reads the source metadata of a run.
	Provider interface {
		Databases(ctx context.Context) ([]*Database, error)
		Tables(ctx context.Context, db string) ([]*Table, error)
	}

	// Database is a source database and its locations.
	Database struct {
		Name            string   `yaml:"name"`
		Location        string   `yaml:"location,omitempty"`
		ManagedLocation string   `yaml:"managed_location,omitempty"`
		Tables          []*Table `yaml:"tables,omitempty"`
	}

	// Table is a source table as reported by SHOW CREATE TABLE. Partitions
	// maps each partition spec to its location. Target is the table of the
	// same name already present on the target cluster, if any.
	Table struct {
		Name       string            `yaml:"name"`
		Owner      string            `yaml:"owner,omitempty"`
		Definition []string          `yaml:"definition"`
		Partitions map[string]string `yaml:"partitions,omitempty"`
		Target     *Table            `yaml:"target,omitempty"`
	}
)
