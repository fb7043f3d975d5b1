// Package harness runs generation scenarios for conformance testing.
//
// A scenario names a set of banks, the options of the session and the
// assertions the outputs must satisfy. Banks are either described inline
// or loaded from dump files.
//
// # Scenario Format
//
//	name: music_switch
//	description: "One output per switch value"
//	banks:
//	  - id: 1
//	    file: music.bnk
//	    objects:
//	      - { type: event, id: 100, name: Play_Music, actions: [200] }
//	      - { type: play, id: 200, target: 300 }
//	      - type: switch
//	        id: 300
//	        group: 50
//	        group_name: area
//	        cases:
//	          - { value: 1, name: forest, targets: [400] }
//	      - { type: sound, id: 400, source: 1000, stream: true }
//	dumps:
//	  - dumps/extra.yaml
//	config:
//	  generate:
//	    unused: true
//	assertions:
//	  - type: outputs
//	    names: ["Play_Music [area=forest].txtp"]
//	  - type: output_contains
//	    name: "Play_Music [area=forest].txtp"
//	    text: ["wem/1000.wem"]
//	  - type: stats
//	    stats: { created: 1 }
//
// The config section uses the project file layout of package config.
//
// # Assertion Types
//
//   - outputs: the written names, in write order
//   - output_contains: an output holds every given text
//   - output_absent: no output with the given name was written
//   - stats: a subset of the session counters
//   - errors: the number of failed entry points
//
// # Deterministic Testing
//
// Runs use a fixed run id (the scenario name) and an in-memory sink, so the
// same scenario always writes the same outputs. RunWithGolden compares the
// written names and counters against testdata/golden/{name}.golden.
//
// When snapshot is set, inline banks go through a CBOR snapshot round trip
// before generation, which checks that snapshots keep everything the
// generator reads.
package harness
