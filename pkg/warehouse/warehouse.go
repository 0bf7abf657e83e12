package warehouse

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// Source records where a Warehouse came from.
type Source string

const (
	SourceGlobal      Source = "GLOBAL"
	SourceEnvironment Source = "ENVIRONMENT"
	SourcePlan        Source = "PLAN"
	SourceTable       Source = "TABLE"
)

// Warehouse is a pair of base directories for a database. Directories have a
// leading slash and no trailing slash; blank means unset.
type Warehouse struct {
	Source            Source `yaml:"source"`
	ExternalDirectory string `yaml:"externalDirectory,omitempty"`
	ManagedDirectory  string `yaml:"managedDirectory,omitempty"`
}

// New returns a Warehouse with both directories normalised.
func New(source Source, ext, mngd string) Warehouse {
	w := Warehouse{Source: source}
	w.SetExternalDirectory(ext)
	w.SetManagedDirectory(mngd)
	return w
}

func (w *Warehouse) SetExternalDirectory(dir string) {
	w.ExternalDirectory = utils.NormalizeDir(dir)
}

func (w *Warehouse) SetManagedDirectory(dir string) {
	w.ManagedDirectory = utils.NormalizeDir(dir)
}

// IsEmpty reports whether neither directory is set.
func (w Warehouse) IsEmpty() bool {
	return w.ExternalDirectory == "" && w.ManagedDirectory == ""
}

// Directory returns the base directory for tt.
func (w Warehouse) Directory(tt mirror.TableType) string {
	if tt == mirror.ManagedTable {
		return w.ManagedDirectory
	}

	return w.ExternalDirectory
}

// DatabaseDirectory returns "<dir>/<db>.db" for tt, or "" when the directory
// for tt is unset.
func (w Warehouse) DatabaseDirectory(db string, tt mirror.TableType) string {
	dir := w.Directory(tt)
	if dir == "" {
		return ""
	}

	return dir + "/" + db + ".db"
}
