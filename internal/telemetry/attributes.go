// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the server.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	CommandKindKey      = "command.kind"
	CommandClientKey    = "command.client_id"
	CommandBroadcastKey = "command.broadcast"
	CommandTargetsKey   = "command.targets"
	CommandInterruptKey = "command.interrupt"

	ProxyEndpointKey = "proxy.endpoint"
	ProxyHostKey     = "proxy.upstream_host"
	ProxyCacheHitKey = "proxy.cache_hit"
	ProxyStatusKey   = "proxy.upstream_status"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CommandAttributes describes a dispatched command. An empty client id is
// recorded as a broadcast.
func CommandAttributes(kind, clientID string, targets int, interrupt bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(CommandKindKey, kind),
		attribute.Int(CommandTargetsKey, targets),
		attribute.Bool(CommandInterruptKey, interrupt),
		attribute.Bool(CommandBroadcastKey, clientID == ""),
	}
	if clientID != "" {
		attrs = append(attrs, attribute.String(CommandClientKey, clientID))
	}
	return attrs
}

// ProxyAttributes describes an outbound proxy fetch.
func ProxyAttributes(endpoint, host string, upstreamStatus int, cacheHit bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ProxyEndpointKey, endpoint),
		attribute.String(ProxyHostKey, host),
		attribute.Bool(ProxyCacheHitKey, cacheHit),
	}
	if upstreamStatus > 0 {
		attrs = append(attrs, attribute.Int(ProxyStatusKey, upstreamStatus))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
