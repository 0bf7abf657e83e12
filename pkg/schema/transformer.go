package schema

import (
	"maps"
	"strings"
	"time"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/translator"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// MetadataTimestampFormat is the layout of the metadata stage property value.
const MetadataTimestampFormat = "2006-01-02 15:04:05"

type (
	// Transformer derives target table definitions from source definitions.
	Transformer struct {
		cfg        *config.Config
		translator *translator.Translator

		// Clock stamps the metadata stage property. Defaults to time.Now.
		Clock func() time.Time
	}

	// build is the state of one Build call.
	build struct {
		*Transformer
		tm     *mirror.TableMirror
		spec   CopySpec
		source *mirror.EnvironmentTable
		target *mirror.EnvironmentTable

		def       []string
		ok        bool
		converted bool
	}
)

// New returns a Transformer for cfg that translates locations with tr.
func New(cfg *config.Config, tr *translator.Translator) *Transformer {
	return &Transformer{
		cfg:        cfg,
		translator: tr,
		Clock:      time.Now,
	}
}

// Build rewrites the definition of spec.Target from spec.Source. It returns
// false when the definition could not be fully derived; the reasons are
// recorded as issues on the record. Translation errors never escape Build.
func (t *Transformer) Build(tm *mirror.TableMirror, spec CopySpec) bool {
	b := &build{
		Transformer: t,
		tm:          tm,
		spec:        spec,
		source:      tm.Env(spec.Source),
		target:      tm.Env(spec.Target),
		ok:          true,
	}

	if !b.source.Exists {
		return true
	}

	b.target.Name = b.source.Name
	b.def = table.Clone(b.source.Definition)

	err := b.run()
	b.target.Definition = table.Fix(b.def)
	if err != nil {
		log.WithFields(log.Fields{
			"db":     tm.Database,
			"table":  tm.Name,
			"target": spec.Target,
		}).WithError(err).Debug("Unable to build table definition")

		b.source.AddIssue(err.Error())
		return false
	}

	return b.ok
}

// IntermediateLocation is the staging directory for tm under
// intermediate_storage.
func (t *Transformer) IntermediateLocation(tm *mirror.TableMirror) string {
	return strings.TrimSuffix(t.cfg.Transfer.IntermediateStorage, "/") + t.WorkingPath(tm)
}

// WorkingPath is "/<remote working dir>/<run marker>/<db>/<table>".
func (t *Transformer) WorkingPath(tm *mirror.TableMirror) string {
	return "/" + strings.Trim(t.cfg.Transfer.RemoteWorkingDirectory, "/") + "/" +
		t.cfg.RunMarker + "/" + tm.Database + "/" + tm.Name
}

// ExportLocation is the default EXPORT directory for tm on the LEFT cluster.
func (t *Transformer) ExportLocation(tm *mirror.TableMirror) string {
	return t.cfg.SourceNamespace() + strings.TrimSuffix(t.cfg.Transfer.ExportBaseDirPrefix, "/") +
		tm.Database + "/" + tm.Name
}

func (b *build) run() error {
	if !table.IsHiveNative(b.source.Definition) {
		if table.IsView(b.source.Definition) {
			b.target.AddIssue(mirror.MsgViewAsIs)
		} else {
			b.target.AddIssue(mirror.MsgNotHiveNative)
		}
		return nil
	}

	storageMigration := b.cfg.DataStrategy == mirror.StorageMigration
	sourceACID := table.IsACID(b.source.Definition)

	b.def = table.StripDatabase(b.def)
	if b.spec.Location != "" {
		b.setLocation(b.spec.Location)
	}

	if b.cfg.LoadMetadataDetails() && !table.NameMatchesDirectory(b.def) {
		b.target.AddIssue(mirror.Message(mirror.MsgTableDirMismatch,
			table.Name(b.def), utils.LastDirectory(table.GetLocation(b.def))))
		if b.cfg.IsDistcp() {
			b.target.AddIssue(mirror.MsgDistcpTableDirMismatch)
			b.ok = false
		}
	}

	if sourceACID {
		b.acid()
	} else {
		b.nonACID()
	}

	if b.spec.Target == mirror.RIGHT {
		b.upsert(consts.PropMetadataFlag, b.Clock().Format(MetadataTimestampFormat))
	}

	if b.spec.RenameTable() {
		b.target.Name = b.spec.TableNamePrefix + b.tm.Name
		b.def = table.Rename(b.def, b.target.Name)
	}

	for _, key := range consts.StatisticProperties {
		b.def = table.RemoveProperty(b.def, key)
	}

	if b.cfg.Cluster(b.spec.Target).PartitionDiscovery.Auto && table.IsPartitioned(b.def) &&
		(b.converted || table.IsExternal(b.def)) {
		b.upsert(consts.PropDiscoverPartitions, "true")
	}

	var err error
	switch b.spec.Target {
	case mirror.LEFT, mirror.RIGHT:
		err = b.alignLocation()
	case mirror.SHADOW, mirror.TRANSFER:
		err = b.stagingLocation()
	}
	if err != nil {
		return err
	}

	if b.spec.Target == mirror.RIGHT && b.cfg.LoadMetadataDetails() && !sourceACID && b.source.Partitioned() {
		if err := b.translatePartitions(); err != nil {
			return err
		}
	}

	switch b.spec.Target {
	case mirror.TRANSFER:
		b.upsert(consts.PropTransferTable, "true")
	case mirror.SHADOW:
		b.upsert(consts.PropShadowTable, "true")
	}

	for _, kv := range b.target.SortedProperties() {
		b.upsert(kv[0], kv[1])
	}

	if !b.spec.TakeOwnership && !storageMigration {
		b.def = table.RemoveProperty(b.def, consts.PropExternalTablePurge)
	}

	if b.cfg.Cluster(b.spec.Target).LegacyHive && !storageMigration {
		b.def = table.RemoveProperty(b.def, consts.PropExternalTablePurge)
		b.def = table.RemoveProperty(b.def, consts.PropDiscoverPartitions)
		b.def = table.RemoveProperty(b.def, consts.PropBucketingVersion)
	}

	return nil
}

func (b *build) nonACID() {
	if !b.spec.Upgrade || !table.IsManaged(b.source.Definition) {
		if b.spec.MakeExternal {
			b.makeExternal()
		}
		if b.spec.TakeOwnership {
			b.upsert(consts.PropExternalTablePurge, "true")
		}
		return
	}

	if !b.makeExternal() {
		return
	}

	b.target.AddIssue(mirror.MsgConvertedToExternal)
	b.target.AddProperty(consts.PropLegacyManagedFlag, "true")
	b.target.AddProperty(consts.PropConvertedFlag, "true")

	switch {
	case !b.spec.TakeOwnership:
		b.target.AddIssue(mirror.MsgOwnershipNotAllowed)
	case b.cfg.NoPurge:
		b.target.AddIssue(mirror.MsgPurgeSuppressed)
	default:
		b.upsert(consts.PropExternalTablePurge, "true")
	}
}

func (b *build) acid() {
	downgrade := b.cfg.MigrateACID.Downgrade

	if b.spec.MakeNonTransactional {
		b.def = table.MakeNonTransactional(b.def)
	}
	if b.spec.MakeExternal {
		b.makeExternal()
	}

	if b.spec.TakeOwnership && (b.spec.Target == mirror.TRANSFER || (downgrade && !b.cfg.NoPurge)) {
		b.upsert(consts.PropExternalTablePurge, "true")
	}

	if b.spec.StripLocation {
		if downgrade {
			b.target.AddIssue(mirror.MsgStripLocationDowngrade)
		} else {
			b.target.AddIssue(mirror.MsgStripLocation)
		}
		b.def = table.StripLocation(b.def)
	}

	if downgrade && b.spec.MakeExternal {
		b.makeExternal()
		if !b.cfg.NoPurge {
			b.upsert(consts.PropExternalTablePurge, "true")
		}
		b.upsert(consts.PropDowngradedFromACID, "true")
	}

	threshold := b.cfg.MigrateACID.ArtificialBucketThreshold
	var removed bool
	if b.def, removed = table.RemoveBuckets(b.def, threshold); removed {
		b.target.AddIssue(mirror.Message(mirror.MsgBucketsRemoved, table.BucketCount(b.source.Definition), threshold))
	}
}

// alignLocation translates the location of tables created on LEFT or RIGHT.
func (b *build) alignLocation() error {
	if b.spec.ReplaceLocation && (!table.IsACID(b.source.Definition) || b.cfg.MigrateACID.Downgrade) {
		if location := b.source.Location(); location != "" {
			tableType := tableTypeOf(b.def)
			translated, err := b.translator.TranslateTable(b.tm, location, tableType, b.strategy())
			if err != nil {
				return err
			}

			b.setLocation(translated)
			if msg, aligned := b.translator.CheckWarehouse(b.tm.Database, tableType, "table", translated); !aligned {
				b.target.AddIssue(msg)
			}
		}
	}

	switch {
	case b.tm.ReMapped:
		b.target.AddIssue(mirror.MsgTableLocationRemapped)
	case b.cfg.Translator.ForceExternalLocation:
		b.target.AddIssue(mirror.MsgTableLocationForced)
	case b.cfg.Translator.TranslationType == config.Aligned && b.cfg.LoadMetadataDetails():
		b.def = table.StripLocation(b.def)
		b.target.AddIssue(mirror.MsgAlignedStripped)
	}

	return nil
}

// stagingLocation places TRANSFER and SHADOW tables.
func (b *build) stagingLocation() error {
	switch {
	case b.spec.Location != "":
		b.setLocation(b.spec.Location)
	case !b.spec.ReplaceLocation:
	case b.cfg.Transfer.IntermediateStorage != "":
		b.setLocation(b.IntermediateLocation(b.tm))
	case b.cfg.TargetNamespace() != "":
		location := b.source.Location()
		if location == "" {
			return nil
		}
		translated, err := b.translator.TranslateTable(b.tm, location, tableTypeOf(b.def), b.strategy())
		if err != nil {
			return err
		}
		b.setLocation(translated)
	case b.spec.StripLocation:
		b.def = table.StripLocation(b.def)
	default:
		b.setLocation(b.ExportLocation(b.tm))
	}

	return nil
}

func (b *build) translatePartitions() error {
	tableType := tableTypeOf(b.def)
	translated, err := b.translator.TranslatePartitions(b.tm, tableType, b.strategy(), maps.Clone(b.source.Partitions))
	if err != nil {
		return err
	}

	b.target.Partitions = translated
	for _, spec := range b.target.PartitionSpecs() {
		if msg, aligned := b.translator.CheckWarehouse(b.tm.Database, tableType, "partition", translated[spec]); !aligned {
			b.target.AddIssue(msg)
		}
	}

	return nil
}

func (b *build) makeExternal() bool {
	var converted bool
	b.def, converted = table.MakeExternal(b.def)
	b.converted = b.converted || converted
	return converted
}

func (b *build) setLocation(location string) {
	if !table.SetLocation(b.def, location) {
		b.ok = false
	}
}

func (b *build) upsert(key, value string) {
	b.def = table.UpsertProperty(b.def, key, value)
}

func (b *build) strategy() mirror.DataStrategy {
	if b.tm.Strategy != "" {
		return b.tm.Strategy
	}

	return b.cfg.DataStrategy
}

func tableTypeOf(def []string) mirror.TableType {
	if table.IsExternal(def) {
		return mirror.ExternalTable
	}

	return mirror.ManagedTable
}
