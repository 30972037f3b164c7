package models

// SourceFlags enables or disables each source adapter independently.
type SourceFlags struct {
	RSS     bool `json:"rss"`
	Social  bool `json:"social"`
	Webhook bool `json:"webhook"`
	Sheets  bool `json:"sheets"`
}

// SyncConfig is the persisted, process-wide ingestion configuration.
type SyncConfig struct {
	Enabled         bool        `json:"enabled"`
	IntervalMinutes int         `json:"interval_minutes"`
	MaxArticles     int         `json:"max_articles"`
	Sources         SourceFlags `json:"sources"`
}

// SyncConfigPatch lists the fields an admin is allowed to change. Nil fields
// are left untouched by MergeConfig.
type SyncConfigPatch struct {
	Enabled         *bool `json:"enabled,omitempty"`
	IntervalMinutes *int  `json:"interval_minutes,omitempty" validate:"omitempty,min=1"`
	MaxArticles     *int  `json:"max_articles,omitempty" validate:"omitempty,min=1"`
	RSS             *bool `json:"rss,omitempty"`
	Social          *bool `json:"social,omitempty"`
	Webhook         *bool `json:"webhook,omitempty"`
	Sheets          *bool `json:"sheets,omitempty"`
}

// MergeConfig applies patch on top of old and returns the result. Pure, so
// merge behavior is testable without a scheduler.
func MergeConfig(old SyncConfig, patch SyncConfigPatch) SyncConfig {
	next := old
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	if patch.IntervalMinutes != nil {
		next.IntervalMinutes = *patch.IntervalMinutes
	}
	if patch.MaxArticles != nil {
		next.MaxArticles = *patch.MaxArticles
	}
	if patch.RSS != nil {
		next.Sources.RSS = *patch.RSS
	}
	if patch.Social != nil {
		next.Sources.Social = *patch.Social
	}
	if patch.Webhook != nil {
		next.Sources.Webhook = *patch.Webhook
	}
	if patch.Sheets != nil {
		next.Sources.Sheets = *patch.Sheets
	}
	return next
}
