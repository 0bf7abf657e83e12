// Package parser provides a participle-based parser for the pieces of Hive DDL
// that the migration engine has to understand structurally.
//
// Table definitions reach hms-mirror as the ordered lines produced by
// SHOW CREATE TABLE. Most transformations operate on those lines directly, but
// two kinds of line carry structure that plain string matching gets wrong:
//
//   - the CREATE header, which names the object and says whether it is a
//     TEMPORARY, EXTERNAL or VIEW definition
//   - TBLPROPERTIES entries, which are quoted key/value pairs followed by an
//     optional separator
//
// Both are parsed with github.com/alecthomas/participle/v2 using a single Hive
// lexer. Keywords are matched case-insensitively and identifiers may be bare,
// backticked, or backticked as a whole qualified name (`db.tbl`).
//
// Basic usage:
//
//	header, err := parser.ParseCreateHeader("CREATE EXTERNAL TABLE `sales.orders`(")
//	if err != nil {
//		return err
//	}
//	header.External          // true
//	header.Name.Database()   // sales
//	header.Name.Table()      // orders
//	header.Tail()            // (
//
//	prop, err := parser.ParseProperty("'transactional'='true',")
//	prop.Name()              // transactional
//	prop.Val()               // true
//	prop.Terminator          // ,
package parser
