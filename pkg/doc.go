// Package pkg provides the core libraries for topotab topology conversion.
//
// # Overview
//
// Topotab converts losslessly between two representations of a network
// topology: a draw.io diagram (devices nested in region swimlanes, connected
// by edges) and a flat connection-record table (CSV). The pkg directory is
// organized into four main areas:
//
//  1. Model - the shared intermediate topology ([topology], [schema])
//  2. Formats - reading and writing both representations ([drawio],
//     [tabular], [detect])
//  3. Conversion - mapping between model and formats ([extract], [records],
//     [synth])
//  4. Orchestration - the end-to-end pipeline and its supporting concerns
//     ([pipeline], [render], [report], [observability], [errors])
//
// # Architecture
//
// The typical data flow in each direction:
//
//	topology.drawio                        connections.csv
//	       ↓                                      ↓
//	  [drawio] package (parse XML)           [tabular] package (decode CSV)
//	       ↓                                      ↓
//	  [extract] package (diagram → model)    [synth] package (table → model)
//	       ↓                                      ↓
//	  [records] package (model → rows)       [drawio] package (model → XML)
//	       ↓                                      ↓
//	connections.csv                        topology.drawio
//
// Both directions meet in the [topology] model, so a round trip preserves
// every region, device, link, and passthrough attribute.
//
// # Quick Start
//
// Convert one file through the pipeline:
//
//	runner := pipeline.NewRunner(schema.Default(), logger)
//	result, err := runner.Execute(ctx, "topology.drawio", pipeline.Options{})
package pkg
