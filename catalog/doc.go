// Package catalog loads patch rule catalogues and compiles them into
// batches for the patch engine.
//
// A catalogue is a YAML document mapping target names to rules:
//
//	targets:
//	  generator:
//	    attempts: 2
//	    rules:
//	      - name: power
//	        aliases: [Power, power, RequiresPower]
//	        value: true
//	        critical: true
//	      - aliases: [Location, BuildLocation]
//	        value: 2
//	        type: BuildLocation
//	      - aliases: [HitPoints, hp]
//	        expr: "current * 2"
//
// Host versions that need different tuning ship overlays: RFC 6902 JSON
// patch documents (in JSON or YAML) applied in order to the catalogue
// before it is decoded.
//
// Each rule carries exactly one of value and expr. type names a scalar type
// the value is converted to, or an enum type registered in the TypeSet, in
// which case the value is an ordinal handed to the engine as a type hint.
// Expressions run at apply time with the variables current (the member's
// value, nil when write-only), target and member.
package catalog
