package mirror

import "fmt"

// Issue texts recorded against tables. Texts with verbs are rendered with
// fmt.Sprintf.
const (
	MsgTableLocationRemapped = "The tables location matched one of the 'global location map' directories. " +
		"The LOCATION element was adjusted and will be explicitly set during table creation."
	MsgTableLocationForced = "You've request the table location be explicitly set."
	MsgLocationNotMatchWarehouse = "You have specified a warehouse directory in the config but after all the translations, " +
		"the `%s` location is still NOT aligned in the DBs warehouse. `%s`->`%s`. Consider adding a global location map entry to align them"
	MsgACIDNotOn = "ACID table migration is not enabled (migrate_acid.on). Table was not migrated."
	MsgViewAsIs  = "This is a VIEW. It will be translated AS-IS. View transitions will NOT honor target db name " +
		"changes or prefixes. The view will be created with the same database and table references as the source."
	MsgNotHiveNative = "This table is not a hive 'native' table. It has no LOCATION and is most likely managed by a " +
		"storage handler. Its definition is carried over as is."
	MsgTableDirMismatch = "Table name `%s` doesn't match the table directory name `%s`. " +
		"distcp will not realign directories to table names."
	MsgDistcpTableDirMismatch = "Table name and directory name mismatch is not supported with distcp data movement."
	MsgBucketsRemoved         = "Bucket Definition removed (was %d) because it was EQUAL TO or BELOW the configured 'artificialBucketThreshold' of %d."
	MsgStripLocation          = "Location Stripped from ACID definition. Location element in 'CREATE' not allowed in Hive3+"
	MsgStripLocationDowngrade = "Location Stripped from the downgraded ACID definition. The table will be created in " +
		"the database's external warehouse directory."
	MsgAlignedStripped = "Location stripped from definition. ALIGNED translation relies on the database location " +
		"to place the table."
	MsgConvertedToExternal = "Schema 'converted' from LEGACY managed to EXTERNAL"
	MsgOwnershipNotAllowed = "Ownership of the data not allowed in this scenario, PURGE flag NOT set."
	MsgPurgeSuppressed     = "Ownership of the data was requested but `no_purge` is set. 'external.table.purge' was NOT added."

	MsgSchemaExistsNoAction     = "Schema exists already and matches. No action necessary"
	MsgSchemaExistsSyncParts    = "Schema exists already and matches. Sync and partition evaluation requested, adding partition sync."
	MsgSchemaExistsNoActionData = "Schema exists already. Drop it and try again or enable sync to OVERWRITE current tables data."
	MsgSchemaExistsPurge        = "Schema exists already and doesn't match, but the existing table owns its data " +
		"(external.table.purge). It was NOT replaced to protect the data."
	MsgSchemaWillBeReplaced = "Schema exists already and doesn't match. It will be replaced."
	MsgSchemaWillBeCreated  = "Schema will be created"
	MsgSchemaDroppedSource  = "Source table no longer exists. The target table will be dropped."
	MsgCINEWithExist        = "Schema exists already. But you've specified 'create_if_not_exists', which will attempt " +
		"to create and softly fail and continue with the remainder sql statements for the table."
	MsgReadOnlyNoReplace = "Read-only is set. The existing target table was left in place."
	MsgSQLSyncWithCINE   = "The schema already exists and you've asked for 'sync'. The target tables schema will remain in " +
		"place and the tables data will be overwritten via SQL."
	MsgSchemaExistsSyncACID = "Schema already exists. You've specified 'sync', the target table will be dropped and " +
		"re-created. The data will be overwritten."
	MsgExportImportSync = "Schema EXISTS in target. Table will be 'dropped' before IMPORT attempt. If the table " +
		"isn't ACID or EXTERNAL/PURGE, existing data may prevent the RE-CREATION of the table when script is executed."

	MsgNonLegacyToLegacy = "Don't support Non-Legacy to Legacy conversions."
	MsgLinkACID          = "Can't LINK ACID tables"
	MsgCommonACID        = "Can't use COMMON for ACID tables"
	MsgAlreadyMigrated   = "Table has already been migrated"
	MsgRunDistcp         = "-- Run distcp commands"
	MsgPartitionLimitACID = "The number of partitions (%d) exceeds the configuration limit " +
		"(migrateACID->partitionLimit) of %d. This value is used to abort migrations that have a high potential for failure."
	MsgPartitionLimitSQL = "The number of partitions (%d) exceeds the configuration limit " +
		"(hybrid->sqlPartitionLimit) of %d. This value is used to abort migrations that have a high potential for failure."
	MsgPartitionLimitEI = "The number of partitions (%d) exceeds the configuration limit " +
		"(hybrid->exportImportPartitionLimit) of %d. EXPORT_IMPORT was not attempted."

	MsgSelectedACID         = "ACID tables are migrated through a TRANSFER table on the LEFT cluster (ACID)."
	MsgSelectedIntermediate = "Intermediate or common storage is configured. The data is staged through a TRANSFER table (INTERMEDIATE)."
	MsgSelectedInPlace      = "ACID table will be downgraded in place (%s)."
	MsgHybridPartitionLimit = "The number of partitions (%d) exceeds the EXPORT_IMPORT partition limit " +
		"(hybrid->exportImportPartitionLimit) of %d. Hence, %s has been selected for the migration."
	MsgInPlaceLegacy         = "The LEFT cluster is a legacy Hive cluster. Hence, %s has been selected for the in place downgrade."
	MsgInPlacePartitionLimit = "The number of partitions (%d) is at or above the EXPORT_IMPORT partition limit " +
		"(hybrid->exportImportPartitionLimit) of %d. Hence, %s has been selected for the in place downgrade."
	MsgInPlaceExportImport = "The table is within the EXPORT_IMPORT partition limit (hybrid->exportImportPartitionLimit). " +
		"Hence, %s has been selected for the in place downgrade."
	MsgExportImportACIDMismatch = "ACID table EXPORTs are NOT compatible for IMPORT to clusters on a different major version of Hive."

	MsgConvertLinkedMissing     = "Table doesn't exist. To transfer, run 'SCHEMA_ONLY'"
	MsgConvertLinkedACID        = "ACID tables not eligible for this operation"
	MsgConvertLinkedPartitioned = "Table is partitioned. Need to change data strategy to drop and recreate."

	MsgPartitionDirMismatch = "Partition `%s` is stored in `%s`, which doesn't match its spec under a directory named " +
		"for the table `%s`. distcp can't realign it."
	MsgStrictMismatch = "Strict mode is set and the table has location mismatches. No SQL was generated for it."
	MsgUnexpected     = "Unexpected failure while planning the table: %v"
)

// Message renders a message text with its arguments.
func Message(text string, args ...any) string {
	if len(args) == 0 {
		return text
	}

	return fmt.Sprintf(text, args...)
}
