// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// Lookup script function identifiers - these are the globals a Lua lookup script must define.
const (
	ResolveFn = "Resolve"
)

// LookupTemplate is a Go text/template for scaffolding new Lua lookup scripts.
const LookupTemplate = `{{ $divider := repeat "-" (plus (max (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias resolution { uri: string, type: string|nil, poster: string|nil, duration: number|nil, url_time_encoding: boolean|nil }


--- Resolves an external media key into a playable source.
-- @param key string Lookup key declared on the placeholder
-- @return resolution|nil Resolved source, or nil when the key is unknown
function {{ .ResolveFn }}(key)
	return nil
end

-- ex: ts=4 sw=4 et filetype=lua
`
