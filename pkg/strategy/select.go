package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
)

// Select returns the variant used to plan tm under cfg and, when the
// configured strategy was replaced, the reason to report. It is evaluated
// once per table before any definition is built.
func Select(cfg *config.Config, tm *mirror.TableMirror) (mirror.DataStrategy, string) {
	left := tm.Env(mirror.LEFT)
	acid := table.IsACID(left.Definition)
	inPlace := acid && cfg.IsDowngradeInPlace()

	switch cfg.DataStrategy {
	case mirror.SQL:
		switch {
		case inPlace:
			return mirror.SQLACIDDowngradeInPlace, mirror.Message(mirror.MsgSelectedInPlace, mirror.SQLACIDDowngradeInPlace)
		case acid:
			return mirror.ACID, mirror.MsgSelectedACID
		case staged(cfg):
			return mirror.Intermediate, mirror.MsgSelectedIntermediate
		}

	case mirror.ExportImport:
		switch {
		case inPlace:
			return mirror.ExportImportACIDDowngradeInPlace,
				mirror.Message(mirror.MsgSelectedInPlace, mirror.ExportImportACIDDowngradeInPlace)
		case acid && cfg.LegacyMismatch():
			return mirror.ACID, mirror.MsgExportImportACIDMismatch
		}

	case mirror.Hybrid:
		if inPlace {
			return mirror.HybridACIDDowngradeInPlace, mirror.Message(mirror.MsgSelectedInPlace, mirror.HybridACIDDowngradeInPlace)
		}
		return selectHybrid(cfg, left)
	}

	return cfg.DataStrategy, ""
}

// selectHybrid picks EXPORT_IMPORT unless the table has more partitions than
// EXPORT/IMPORT handles well.
func selectHybrid(cfg *config.Config, left *mirror.EnvironmentTable) (mirror.DataStrategy, string) {
	acid := table.IsACID(left.Definition)
	if acid && cfg.LegacyMismatch() {
		return mirror.ACID, mirror.MsgSelectedACID
	}

	limit := cfg.Hybrid.ExportImportPartitionLimit
	if n := len(left.Partitions); left.Partitioned() && limit > 0 && n > limit {
		ds := mirror.SQL
		switch {
		case acid:
			ds = mirror.ACID
		case staged(cfg):
			ds = mirror.Intermediate
		}
		return ds, mirror.Message(mirror.MsgHybridPartitionLimit, n, limit, ds)
	}

	return mirror.ExportImport, ""
}

// selectInPlace resolves HYBRID_ACID_DOWNGRADE_INPLACE. A legacy LEFT cluster
// always uses SQL, as does a table with at least as many partitions as the
// EXPORT_IMPORT partition limit.
func selectInPlace(cfg *config.Config, left *mirror.EnvironmentTable) (mirror.DataStrategy, string) {
	if cfg.Clusters.Left.LegacyHive {
		return mirror.SQLACIDDowngradeInPlace, mirror.Message(mirror.MsgInPlaceLegacy, mirror.SQLACIDDowngradeInPlace)
	}

	n, limit := len(left.Partitions), cfg.Hybrid.ExportImportPartitionLimit
	if left.Partitioned() && limit > 0 && n >= limit {
		return mirror.SQLACIDDowngradeInPlace,
			mirror.Message(mirror.MsgInPlacePartitionLimit, n, limit, mirror.SQLACIDDowngradeInPlace)
	}

	return mirror.ExportImportACIDDowngradeInPlace,
		mirror.Message(mirror.MsgInPlaceExportImport, mirror.ExportImportACIDDowngradeInPlace)
}

func staged(cfg *config.Config) bool {
	return cfg.Transfer.IntermediateStorage != "" || cfg.Transfer.CommonStorage != ""
}
