// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Embed player lifecycle - these keys tune the per-instance state machine and its monitor loop.
const (
	MonitorRate           = "embedplayer.monitor_rate"
	DefaultSize           = "embedplayer.default_size"
	WaitForMeta           = "embedplayer.wait_for_meta"
	WaitForMetaTimeout    = "embedplayer.wait_for_meta_timeout"
	SeekResumeDelay       = "embedplayer.seek_resume_delay"
	URLTimeEncoding       = "embedplayer.url_time_encoding"
	NativeControls        = "embedplayer.native_controls"
	InclusiveEnd          = "embedplayer.inclusive_end"
	VideoAspect           = "embedplayer.video_aspect"
	VolumeTolerance       = "embedplayer.volume_tolerance"
	PlaceholderIDPrefix   = "embedplayer.id_prefix"
	AttributeDefaultsRoot = "embedplayer.attributes"
)

// Registered attribute defaults - consulted last when resolving an instance's attribute record.
const (
	AttrVolume      = AttributeDefaultsRoot + ".volume"
	AttrControls    = AttributeDefaultsRoot + ".controls"
	AttrAutoplay    = AttributeDefaultsRoot + ".autoplay"
	AttrLoop        = AttributeDefaultsRoot + ".loop"
	AttrMuted       = AttributeDefaultsRoot + ".muted"
	AttrPreviewMode = AttributeDefaultsRoot + ".preview_mode"
	AttrPoster      = AttributeDefaultsRoot + ".poster"
)

// Backend selection - these keys bias negotiation toward a specific playback engine.
const (
	BackendPreferred = "backend.preferred"
	BackendMPVPath   = "backend.mpv_path"
	BackendSystemApp = "backend.system_app"
)

// Source lookup - these keys configure external source resolution.
const (
	LookupCache         = "lookup.cache"
	LookupCacheLifetime = "lookup.cache_lifetime"
	LookupSuggestions   = "lookup.suggestions"
)

// Instrumentation - where lifecycle counters are exposed.
const (
	MetricsAddr = "metrics.addr"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the command-line behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	IconsVariant    = "icons.variant"
)
