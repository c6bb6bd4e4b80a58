// Package core provides the data-shaping pipeline behind the books dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Pipeline
//
// The dataset flows through four stages, each producing a new [Table]:
//
//  1. Loader: a [Source] registered under a name reads the snapshot once.
//     [Loader.Load] memoizes the result for the lifetime of the Loader.
//  2. Enricher: [Enrich] broadcasts the per-country mean of non-zero ratings
//     onto every row and attaches an ISO alpha-3 country code.
//  3. Filter: [Restrict] keeps rated rows with a known publication year whose
//     country is on the European allow-list.
//  4. View Builders: pure functions that slice the working dataset for each
//     chart. [Render] runs all of them for one [Selection].
//
// [NewDataset] runs stages 2 and 3 and holds the result as an immutable
// handle that the hosting application passes to its handlers.
//
// # Sources
//
// Sources register at init time using [RegisterSource]:
//
//	core.RegisterSource("parquet", func(cfg core.SourceConfig) (core.Source, error) {
//	    return NewParquet(cfg.Path), nil
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DATA001-DATA003: dataset errors (missing file, missing column, corrupt)
//   - SEL001-SEL002: selection errors (malformed parameter, unknown view)
//   - SRC001: configuration names an unregistered source
//   - RND001: chart renderer saturated
//   - REQ001-REQ002: request cancelled or timed out
package core
