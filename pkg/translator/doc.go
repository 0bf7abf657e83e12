// Package translator computes where tables and partitions land on the target
// cluster.
//
// A location is translated in this order:
//
//  1. Locations already on the target namespace, or already under a map
//     target or warehouse directory when both sides share a namespace, are
//     returned unchanged. Translating twice is a no-op.
//  2. The ordered global location map is applied. Entries are matched on
//     whole path segments, longest key first, and user entries override the
//     entries derived from warehouse plans.
//  3. Otherwise the location is re-rooted under the resolved warehouse
//     directory of its database, keeping the trailing directories selected by
//     the consolidation level.
//  4. Otherwise RELATIVE translation swaps the namespace and ALIGNED
//     translation fails.
//
// Every translation is recorded per database and environment so distcp
// source lists can be built once planning is done.
//
// The global location map is rebuilt once per run by Rebuild, before any table
// is planned, and read through an atomic snapshot afterwards.
package translator
