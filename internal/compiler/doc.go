// Package compiler turns CUE group schemas into ir.GroupTypeSpec values.
//
// A schema declares group types and their properties:
//
//	group_type: Household: property: {
//	    income: {kind: "int", default: 0}
//	    tenure: {kind: "enum", symbols: ["own", "rent"], mutable: false}
//	    density: {kind: "float", width: 32, track_times: true}
//	}
//
// Properties keep their declaration order, which becomes the definition
// order of the compiled type. A property without a default is mandatory.
package compiler
