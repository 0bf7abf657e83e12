// Package utils provides the path and statement helpers shared by the
// translator, the schema transformer and the strategies.
//
// # Path Utilities (urls.go, partition.go)
//
// Filesystem locations arrive as fully qualified URLs such as
// hdfs://nameservice1/warehouse/tablespace/external/hive/sales.db/orders.
// The helpers split them into a namespace and a path and reduce them by a
// number of trailing directories:
//
//	ns := utils.Namespace("hdfs://left/warehouse/db.db/tbl")
//	// Result: hdfs://left
//
//	base := utils.ReduceURLBy("hdfs://left/warehouse/db.db/tbl", 1)
//	// Result: hdfs://left/warehouse/db.db
//
// Partition specs use the directory form key=value/key=value:
//
//	utils.PartitionSpecToSQL("dt=2024-01-01/hr=1")
//	// Result: dt="2024-01-01",hr="1"
//
//	utils.PartitionDepth("dt=2024-01-01/hr=1")
//	// Result: 2
//
// # Identifier Utilities (identifier.go)
//
// Identifiers are backticked consistently and never double-backticked:
//
//	utils.BacktickIdentifier("sales.orders")
//	// Result: `sales`.`orders`
//
// # Statement Builder (sqlbuilder.go, statements.go)
//
// Every statement the strategies emit is rendered through SQLBuilder so
// quoting stays uniform:
//
//	utils.AlterTableLocation("orders", "hdfs://right/wh/ext/sales.db/orders")
//	// Result: ALTER TABLE `orders` SET LOCATION "hdfs://right/wh/ext/sales.db/orders"
package utils
