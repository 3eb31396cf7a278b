// Package harness runs scripted investigations through the tool table.
//
// A scenario names a data set, a list of tool calls with expected outcomes,
// and assertions over the calls that were made. The harness builds a real
// engine for each run, so scenarios exercise discovery, querying, timeline
// fusion, cost analysis and report assembly end to end.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	data: ../data            # optional; default is the fixture data set
//	config: shiptrace.yaml   # optional
//	trace_id: trace-1        # optional
//	now: "2024-01-08T09:30:00Z"
//	steps:
//	  - call: analyze_shipment_timeline
//	    args: { shipment_id: SHP-001-1 }
//	    expect:
//	      result: { total_events: 7 }
//	  - call: compute_cost_analysis
//	    args: { shipment_id: SHP-404-1 }
//	    expect:
//	      error: UNIT_NOT_FOUND
//	assertions:
//	  - type: call_order
//	    tools: [analyze_shipment_timeline, compute_cost_analysis]
//
// Unknown fields are rejected so typos fail loudly.
//
// # Assertion Types
//
//   - call_contains: a call of tool whose args contain the given args
//   - call_order: tools were first called in the listed order
//   - call_count: tool was called exactly count times
//   - no_errors: every call succeeded
//
// # Deterministic Testing
//
// Every call carries the same trace id and the report clock is fixed, so
// documents are reproducible and can be compared against golden snapshots
// with RunWithGolden.
package harness
