// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

// Chain holds the extension structures attached to a structure. Each
// element is a pointer to an extension structure such as
// *SpaceVelocity; output structures are filled in place.
type Chain []any

// Find returns the first element of chain whose type is *T.
func Find[T any](chain Chain) (*T, bool) {
	for _, element := range chain {
		if typed, ok := element.(*T); ok && typed != nil {
			return typed, true
		}
	}
	return nil, false
}
