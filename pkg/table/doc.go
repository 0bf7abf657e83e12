// Package table implements the operations the engine performs on Hive table
// definitions.
//
// A definition is the ordered list of lines returned by SHOW CREATE TABLE:
//
//	CREATE EXTERNAL TABLE `sales.orders`(
//	  `id` bigint,
//	  `amount` double)
//	PARTITIONED BY (
//	  `dt` string)
//	ROW FORMAT SERDE
//	  'org.apache.hadoop.hive.ql.io.orc.OrcSerde'
//	STORED AS INPUTFORMAT
//	  'org.apache.hadoop.hive.ql.io.orc.OrcInputFormat'
//	OUTPUTFORMAT
//	  'org.apache.hadoop.hive.ql.io.orc.OrcOutputFormat'
//	LOCATION
//	  'hdfs://left/warehouse/tablespace/external/hive/sales.db/orders'
//	TBLPROPERTIES (
//	  'bucketing_version'='2',
//	  'transient_lastDdlTime'='1700000000')
//
// Query functions never modify their input. Functions that change a definition
// return the updated slice, which may share its backing array with the input;
// callers that need the original intact work on Clone.
package table
