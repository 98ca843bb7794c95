// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step CUE parsing pattern used to decode
// package declaration files (package.cue):
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed package_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[PackageDecl](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Package",
//	    cueutil.WithFilename("package.cue"),
//	)
//	if err != nil {
//	    return nil, err // Error includes CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
