// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xr

// CurrentLoaderAPILayerInterfaceVersion is the loader interface
// version layers negotiate.
const CurrentLoaderAPILayerInterfaceVersion = 1

// NegotiateLoaderInfo is the range of versions the loader supports.
type NegotiateLoaderInfo struct {
	MinInterfaceVersion uint32
	MaxInterfaceVersion uint32
	MinAPIVersion       Version
	MaxAPIVersion       Version
}

// NegotiateAPILayerRequest is filled by a layer during negotiation
// with the versions it speaks and its two bootstrap entry points.
type NegotiateAPILayerRequest struct {
	LayerInterfaceVersion  uint32
	LayerAPIVersion        Version
	GetInstanceProcAddr    GetInstanceProcAddrFunc
	CreateAPILayerInstance CreateAPILayerInstanceFunc
}

// APILayerNextInfo links a layer to the next element of the chain.
type APILayerNextInfo struct {
	LayerName                  string
	NextGetInstanceProcAddr    GetInstanceProcAddrFunc
	NextCreateAPILayerInstance CreateAPILayerInstanceFunc
	Next                       *APILayerNextInfo
}

// APILayerCreateInfo accompanies instance creation through the layer
// chain. NextInfo points at the element after the layer being called.
type APILayerCreateInfo struct {
	SettingsFilePath string
	NextInfo         *APILayerNextInfo
}

// CreateAPILayerInstanceFunc creates an instance through the layer
// chain.
type CreateAPILayerInstanceFunc func(info *InstanceCreateInfo, layerInfo *APILayerCreateInfo) (Instance, Result)
